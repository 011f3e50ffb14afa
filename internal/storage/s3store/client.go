// Package s3store implements storage.Client with the AWS SDK for Go v2.
//
// It talks to Wasabi and any other S3-compatible endpoint using static
// credentials, optionally carrying an MFA session token.
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/S-Muro0526/wasabi/internal/errors"
	"github.com/S-Muro0526/wasabi/internal/storage"
	"github.com/S-Muro0526/wasabi/internal/version"
)

const (
	defaultRegion = "us-east-1"
	maxPageSize   = 1000
)

// Client is a storage.Client backed by S3.
type Client struct {
	// api is the underlying S3 client
	api S3API

	// bucket is the bucket every operation targets
	bucket string

	// logger is used for debug logging of requests
	logger *slog.Logger

	pageSize int32
}

var _ storage.Client = (*Client)(nil)

// New creates a Client from settings.
//
// Example:
//
//	client, err := s3store.New(ctx, storage.Settings{
//	    Bucket:          "backups",
//	    Endpoint:        "https://s3.wasabisys.com",
//	    AccessKeyID:     id,
//	    SecretAccessKey: secret,
//	}, s3store.WithLogger(slog.Default()))
func New(ctx context.Context, settings storage.Settings, opts ...Option) (*Client, error) {
	if settings.Bucket == "" {
		return nil, errors.NewError("client initialization", errors.ErrInvalidConfig).
			WithMessage("bucket name cannot be empty")
	}
	if settings.Endpoint == "" {
		return nil, errors.NewError("client initialization", errors.ErrInvalidConfig).
			WithMessage("endpoint URL cannot be empty")
	}

	options := defaultOptions()
	applyOptions(options, opts)

	region := settings.Region
	if region == "" {
		region = defaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.AccessKeyID,
			settings.SecretAccessKey,
			settings.SessionToken,
		)),
	}
	if settings.CABundlePath != "" {
		pem, err := os.ReadFile(settings.CABundlePath)
		if err != nil {
			return nil, errors.NewError("client initialization", errors.ErrInvalidConfig).
				WithMessage(fmt.Sprintf("read CA bundle %q: %v", settings.CABundlePath, err))
		}
		loadOpts = append(loadOpts, config.WithCustomCABundle(bytes.NewReader(pem)))
	}
	if options.retryer != nil {
		retryer := options.retryer
		loadOpts = append(loadOpts, config.WithRetryer(func() aws.Retryer {
			return retryer
		}))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.NewError("client initialization", err)
	}

	api := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(settings.Endpoint)
		o.UsePathStyle = settings.ForcePathStyle
	})

	return newClient(api, settings.Bucket, options), nil
}

// NewWithAPI creates a Client over a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithAPI(api S3API, bucket string, opts ...Option) *Client {
	options := defaultOptions()
	applyOptions(options, opts)
	return newClient(api, bucket, options)
}

func newClient(api S3API, bucket string, options *clientOptions) *Client {
	return &Client{
		api:      api,
		bucket:   bucket,
		logger:   options.logger,
		pageSize: options.pageSize,
	}
}

// Bucket returns the bucket all operations target.
func (c *Client) Bucket() string {
	return c.bucket
}

// ListObjects lists the current objects under prefix.
//
//nolint:ireturn // storage.ObjectPager is the backend-neutral contract.
func (c *Client) ListObjects(prefix string) storage.ObjectPager {
	return &objectPager{
		client:    c,
		prefix:    prefix,
		firstPage: true,
	}
}

// ListVersions lists every version and delete marker under prefix.
//
//nolint:ireturn // version.Pager is the backend-neutral contract.
func (c *Client) ListVersions(prefix string) version.Pager {
	return &versionPager{
		client:    c,
		prefix:    prefix,
		firstPage: true,
	}
}

// Head returns the object's metadata.
func (c *Client) Head(ctx context.Context, key, versionID string) (*storage.ObjectInfo, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}
	if versionID != "" {
		input.VersionId = aws.String(versionID)
	}

	if c.logger != nil {
		c.logger.DebugContext(ctx, "head object",
			"bucket", c.bucket,
			"key", key,
			"version_id", versionID)
	}

	output, err := c.api.HeadObject(ctx, input)
	if err != nil {
		return nil, errors.NewObjectError("head", c.bucket, key, classify(err)).WithVersion(versionID)
	}

	return &storage.ObjectInfo{
		Key:          key,
		VersionID:    aws.ToString(output.VersionId),
		Size:         aws.ToInt64(output.ContentLength),
		LastModified: aws.ToTime(output.LastModified).UTC(),
		ContentType:  aws.ToString(output.ContentType),
		ETag:         aws.ToString(output.ETag),
	}, nil
}

// Get opens the object body. The caller must close it.
func (c *Client) Get(ctx context.Context, key, versionID string) (io.ReadCloser, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}
	if versionID != "" {
		input.VersionId = aws.String(versionID)
	}

	if c.logger != nil {
		c.logger.DebugContext(ctx, "get object",
			"bucket", c.bucket,
			"key", key,
			"version_id", versionID)
	}

	output, err := c.api.GetObject(ctx, input)
	if err != nil {
		return nil, errors.NewObjectError("get", c.bucket, key, classify(err)).WithVersion(versionID)
	}
	if output.Body == nil {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return output.Body, nil
}
