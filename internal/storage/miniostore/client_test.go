package miniostore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wserrors "github.com/S-Muro0526/wasabi/internal/errors"
	"github.com/S-Muro0526/wasabi/internal/storage"
	"github.com/S-Muro0526/wasabi/internal/version"
)

type fakeAPI struct {
	listing  []minio.ObjectInfo
	lastList minio.ListObjectsOptions
	objects  map[string]string
	statErr  error
}

func (f *fakeAPI) ListObjects(ctx context.Context, _ string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	f.lastList = opts
	ch := make(chan minio.ObjectInfo)
	go func() {
		defer close(ch)
		for _, info := range f.listing {
			select {
			case ch <- info:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func (f *fakeAPI) StatObject(_ context.Context, _, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if f.statErr != nil {
		return minio.ObjectInfo{}, f.statErr
	}
	data, ok := f.objects[key]
	if !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}
	}
	return minio.ObjectInfo{Key: key, Size: int64(len(data)), VersionID: opts.VersionID}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, _, key string, _ minio.GetObjectOptions) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func TestClient_ListVersions(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	api := &fakeAPI{listing: []minio.ObjectInfo{
		{Key: "p/a.txt", VersionID: "v2", Size: 4, LastModified: t0.Add(time.Hour), IsLatest: true},
		{Key: "p/a.txt", VersionID: "v1", Size: 3, LastModified: t0},
		{Key: "p/", VersionID: "v1", LastModified: t0},
		{Key: "p/b.txt", VersionID: "d1", LastModified: t0, IsDeleteMarker: true, IsLatest: true},
		{Key: "p/c.txt", VersionID: "v1", Size: 9, LastModified: t0},
	}}
	client := NewWithAPI(api, "bucket", WithPageSize(2))

	pager := client.ListVersions("p/")
	var pages int
	var entries []version.Entry
	for pager.HasMorePages() {
		page, err := pager.NextPage(context.Background())
		require.NoError(t, err)
		pages++
		entries = append(entries, page.Versions...)
		entries = append(entries, page.DeleteMarkers...)
	}

	assert.Equal(t, 3, pages)
	assert.True(t, api.lastList.WithVersions)
	assert.True(t, api.lastList.Recursive)
	assert.Equal(t, "p/", api.lastList.Prefix)
	require.Len(t, entries, 5)

	r := version.NewResolver(version.EndOfDay(t0))
	for _, e := range entries {
		r.Add(e)
	}
	got := r.Result()
	assert.Len(t, got, 2)
	assert.Equal(t, "v2", got["p/a.txt"].VersionID)
	assert.Contains(t, got, "p/c.txt")
}

func TestClient_ListObjects(t *testing.T) {
	api := &fakeAPI{listing: []minio.ObjectInfo{
		{Key: "docs/", Size: 0},
		{Key: "docs/a.txt", Size: 1},
		{Key: "docs/b.txt", Size: 2},
	}}
	client := NewWithAPI(api, "bucket")

	var keys []string
	err := storage.WalkObjects(context.Background(), client.ListObjects("docs/"), func(o storage.Object) {
		keys = append(keys, o.Key)
	})

	require.NoError(t, err)
	assert.False(t, api.lastList.WithVersions)
	assert.Equal(t, []string{"docs/a.txt", "docs/b.txt"}, keys)
}

func TestClient_ListVersionsUnsupported(t *testing.T) {
	api := &fakeAPI{listing: []minio.ObjectInfo{
		{Err: minio.ErrorResponse{Code: "InvalidRequest", StatusCode: http.StatusBadRequest}},
	}}
	client := NewWithAPI(api, "bucket")

	err := version.Normalize(context.Background(), client.ListVersions(""), func(version.Entry) {})

	assert.True(t, wserrors.IsVersioningUnsupported(err))
}

func TestClient_HeadAndGet(t *testing.T) {
	api := &fakeAPI{objects: map[string]string{"k": "hello"}}
	client := NewWithAPI(api, "bucket")

	info, err := client.Head(context.Background(), "k", "v3")
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, "v3", info.VersionID)

	body, err := client.Get(context.Background(), "k", "")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = client.Head(context.Background(), "missing", "")
	assert.True(t, wserrors.IsObjectNotFound(err))

	_, err = client.Get(context.Background(), "missing", "")
	assert.True(t, wserrors.IsObjectNotFound(err))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no such key", minio.ErrorResponse{Code: "NoSuchKey"}, wserrors.ErrObjectNotFound},
		{"status 404", minio.ErrorResponse{StatusCode: http.StatusNotFound}, wserrors.ErrObjectNotFound},
		{"no such bucket", minio.ErrorResponse{Code: "NoSuchBucket"}, wserrors.ErrBucketNotFound},
		{"access denied", minio.ErrorResponse{Code: "AccessDenied"}, wserrors.ErrAccessDenied},
		{"status 403", minio.ErrorResponse{StatusCode: http.StatusForbidden}, wserrors.ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tt.err), tt.want)
		})
	}

	plain := errors.New("dial tcp: refused")
	assert.Equal(t, plain, classify(plain))
}

func TestNew_InvalidSettings(t *testing.T) {
	_, err := New(storage.Settings{Endpoint: "https://s3.wasabisys.com"})
	assert.ErrorIs(t, err, wserrors.ErrInvalidConfig)

	_, err = New(storage.Settings{Bucket: "b", Endpoint: "::not a url"})
	assert.ErrorIs(t, err, wserrors.ErrInvalidConfig)

	_, err = New(storage.Settings{Bucket: "b", Endpoint: "https://s3.wasabisys.com", CABundlePath: "/nonexistent.pem"})
	assert.ErrorIs(t, err, wserrors.ErrInvalidConfig)
}

func TestNew(t *testing.T) {
	client, err := New(storage.Settings{
		Bucket:          "b",
		Endpoint:        "https://s3.wasabisys.com",
		AccessKeyID:     "id",
		SecretAccessKey: "secret",
		ForcePathStyle:  true,
	})

	require.NoError(t, err)
	assert.Equal(t, "b", client.Bucket())
}
