// Package miniostore implements storage.Client with minio-go.
//
// It is an alternative to the AWS SDK backend for S3-compatible services,
// selected with the "minio" backend setting.
package miniostore

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/S-Muro0526/wasabi/internal/errors"
	"github.com/S-Muro0526/wasabi/internal/storage"
	"github.com/S-Muro0526/wasabi/internal/version"
)

const defaultPageSize = 1000

// API is the subset of minio-go the client uses.
type API interface {
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (io.ReadCloser, error)
}

// sdk adapts *minio.Client to API.
type sdk struct {
	client *minio.Client
}

func (s sdk) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	return s.client.ListObjects(ctx, bucket, opts)
}

func (s sdk) StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return s.client.StatObject(ctx, bucket, key, opts)
}

func (s sdk) GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, opts)
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; Stat surfaces not-found and permission errors
	// before any bytes are written locally.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, err
	}
	return obj, nil
}

// Client is a storage.Client backed by minio-go.
type Client struct {
	api      API
	bucket   string
	logger   *slog.Logger
	pageSize int
}

var _ storage.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithLogger configures the client with a custom logger.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithPageSize sets how many listing entries are grouped into one page.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// New connects to the endpoint in settings.
func New(settings storage.Settings, opts ...Option) (*Client, error) {
	if settings.Bucket == "" {
		return nil, errors.NewError("client initialization", errors.ErrInvalidConfig).
			WithMessage("bucket name cannot be empty")
	}

	u, err := url.Parse(settings.Endpoint)
	if err != nil || u.Host == "" {
		return nil, errors.NewError("client initialization", errors.ErrInvalidConfig).
			WithMessage(fmt.Sprintf("invalid endpoint URL %q", settings.Endpoint))
	}
	secure := u.Scheme != "http"

	minioOpts := &minio.Options{
		Creds:  credentials.NewStaticV4(settings.AccessKeyID, settings.SecretAccessKey, settings.SessionToken),
		Secure: secure,
		Region: settings.Region,
	}
	if settings.ForcePathStyle {
		minioOpts.BucketLookup = minio.BucketLookupPath
	}
	if settings.CABundlePath != "" {
		transport, err := transportWithCABundle(settings.CABundlePath, secure)
		if err != nil {
			return nil, err
		}
		minioOpts.Transport = transport
	}

	client, err := minio.New(u.Host, minioOpts)
	if err != nil {
		return nil, errors.NewError("client initialization", err)
	}

	return NewWithAPI(sdk{client: client}, settings.Bucket, opts...), nil
}

// NewWithAPI creates a Client over a custom API implementation.
// This is primarily used for testing.
func NewWithAPI(api API, bucket string, opts ...Option) *Client {
	c := &Client{
		api:      api,
		bucket:   bucket,
		pageSize: defaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func transportWithCABundle(path string, secure bool) (*http.Transport, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewError("client initialization", errors.ErrInvalidConfig).
			WithMessage(fmt.Sprintf("read CA bundle %q: %v", path, err))
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.NewError("client initialization", errors.ErrInvalidConfig).
			WithMessage(fmt.Sprintf("no certificates found in CA bundle %q", path))
	}

	transport, err := minio.DefaultTransport(secure)
	if err != nil {
		return nil, errors.NewError("client initialization", err)
	}
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	transport.TLSClientConfig.RootCAs = pool
	return transport, nil
}

// Bucket returns the bucket all operations target.
func (c *Client) Bucket() string {
	return c.bucket
}

// ListObjects lists the current objects under prefix.
//
//nolint:ireturn // storage.ObjectPager is the backend-neutral contract.
func (c *Client) ListObjects(prefix string) storage.ObjectPager {
	return &objectPager{stream: c.stream(prefix, false)}
}

// ListVersions lists every version and delete marker under prefix.
//
//nolint:ireturn // version.Pager is the backend-neutral contract.
func (c *Client) ListVersions(prefix string) version.Pager {
	return &versionPager{stream: c.stream(prefix, true)}
}

// Head returns the object's metadata.
func (c *Client) Head(ctx context.Context, key, versionID string) (*storage.ObjectInfo, error) {
	if c.logger != nil {
		c.logger.DebugContext(ctx, "stat object",
			"bucket", c.bucket,
			"key", key,
			"version_id", versionID)
	}

	info, err := c.api.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{VersionID: versionID})
	if err != nil {
		return nil, errors.NewObjectError("head", c.bucket, key, classify(err)).WithVersion(versionID)
	}

	return &storage.ObjectInfo{
		Key:          key,
		VersionID:    info.VersionID,
		Size:         info.Size,
		LastModified: info.LastModified.UTC(),
		ContentType:  info.ContentType,
		ETag:         info.ETag,
	}, nil
}

// Get opens the object body. The caller must close it.
func (c *Client) Get(ctx context.Context, key, versionID string) (io.ReadCloser, error) {
	if c.logger != nil {
		c.logger.DebugContext(ctx, "get object",
			"bucket", c.bucket,
			"key", key,
			"version_id", versionID)
	}

	body, err := c.api.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{VersionID: versionID})
	if err != nil {
		return nil, errors.NewObjectError("get", c.bucket, key, classify(err)).WithVersion(versionID)
	}
	return body, nil
}
