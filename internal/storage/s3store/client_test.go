package s3store

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wserrors "github.com/S-Muro0526/wasabi/internal/errors"
	"github.com/S-Muro0526/wasabi/internal/storage"
	"github.com/S-Muro0526/wasabi/internal/testutil"
	"github.com/S-Muro0526/wasabi/internal/version"
)

func TestClient_Head(t *testing.T) {
	tests := []struct {
		name      string
		mock      *testutil.MockS3Client
		versionID string
		wantSize  int64
		wantErr   error
	}{
		{
			name:     "existing object",
			mock:     testutil.NewMockBuilder().WithObjects(map[string][]byte{"a/b.txt": []byte("hello")}).Build(),
			wantSize: 5,
		},
		{
			name:      "existing object with version",
			mock:      testutil.NewMockBuilder().WithObjects(map[string][]byte{"a/b.txt": []byte("hello")}).Build(),
			versionID: "v1",
			wantSize:  5,
		},
		{
			name:    "missing object",
			mock:    testutil.NewMockBuilder().WithObjectNotFound().Build(),
			wantErr: wserrors.ErrObjectNotFound,
		},
		{
			name:    "access denied",
			mock:    testutil.NewMockBuilder().WithAccessDenied().Build(),
			wantErr: wserrors.ErrAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewWithAPI(tt.mock, "bucket")

			info, err := client.Head(context.Background(), "a/b.txt", tt.versionID)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), "bucket/a/b.txt")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSize, info.Size)
			assert.Equal(t, tt.versionID, info.VersionID)
		})
	}
}

func TestClient_HeadPassesVersion(t *testing.T) {
	var got *s3.HeadObjectInput
	mock := testutil.NewMockBuilder().
		WithHeadObject(func(_ context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
			got = in
			return &s3.HeadObjectOutput{ContentLength: testutil.Int64Ptr(1)}, nil
		}).
		Build()

	client := NewWithAPI(mock, "bucket")

	_, err := client.Head(context.Background(), "k", "")
	require.NoError(t, err)
	assert.Nil(t, got.VersionId)

	_, err = client.Head(context.Background(), "k", "v9")
	require.NoError(t, err)
	assert.Equal(t, "v9", testutil.StringValue(got.VersionId))
	assert.Equal(t, "bucket", testutil.StringValue(got.Bucket))
}

func TestClient_Get(t *testing.T) {
	mock := testutil.NewMockBuilder().
		WithObjects(map[string][]byte{"k": []byte("payload")}).
		Build()
	client := NewWithAPI(mock, "bucket")

	body, err := client.Get(context.Background(), "k", "")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = client.Get(context.Background(), "missing", "")
	assert.ErrorIs(t, err, wserrors.ErrObjectNotFound)
}

func TestClient_ListObjectsPaginates(t *testing.T) {
	var tokens []string
	mock := testutil.NewMockBuilder().
		WithListObjectsV2(func(_ context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
			token := testutil.StringValue(in.ContinuationToken)
			tokens = append(tokens, token)
			assert.Equal(t, "docs/", testutil.StringValue(in.Prefix))
			assert.Equal(t, int32(2), *in.MaxKeys)

			if token == "" {
				return &s3.ListObjectsV2Output{
					Contents: []types.Object{
						testutil.CreateTestObject("docs/", 0, testutil.FixedTime),
						testutil.CreateTestObject("docs/a.txt", 3, testutil.FixedTime),
					},
					IsTruncated:           testutil.BoolPtr(true),
					NextContinuationToken: testutil.StringPtr("t2"),
				}, nil
			}
			return &s3.ListObjectsV2Output{
				Contents: []types.Object{
					testutil.CreateTestObject("docs/b.txt", 4, testutil.FixedTime),
				},
				IsTruncated: testutil.BoolPtr(false),
			}, nil
		}).
		Build()
	client := NewWithAPI(mock, "bucket", WithPageSize(2))

	var objects []storage.Object
	err := storage.WalkObjects(context.Background(), client.ListObjects("docs/"), func(o storage.Object) {
		objects = append(objects, o)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"", "t2"}, tokens)
	require.Len(t, objects, 2)
	assert.Equal(t, "docs/a.txt", objects[0].Key)
	assert.Equal(t, int64(4), objects[1].Size)
}

func TestClient_ListObjectsError(t *testing.T) {
	client := NewWithAPI(testutil.NewMockBuilder().WithAccessDenied().Build(), "bucket")

	pager := client.ListObjects("")
	require.True(t, pager.HasMorePages())

	_, err := pager.NextPage(context.Background())
	assert.ErrorIs(t, err, wserrors.ErrAccessDenied)
	assert.False(t, pager.HasMorePages())
}

func TestClient_ListVersions(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	mock := testutil.NewMockBuilder().
		WithVersionPages(
			&s3.ListObjectVersionsOutput{
				Versions: []types.ObjectVersion{
					testutil.CreateTestObjectVersion("p/a.txt", "v2", 10, t0.Add(time.Hour), true),
					testutil.CreateTestObjectVersion("p/", "v1", 0, t0, true),
				},
			},
			&s3.ListObjectVersionsOutput{
				Versions: []types.ObjectVersion{
					testutil.CreateTestObjectVersion("p/a.txt", "v1", 5, t0, false),
				},
				DeleteMarkers: []types.DeleteMarkerEntry{
					testutil.CreateTestDeleteMarker("p/b.txt", "d1", t0.Add(2*time.Hour), true),
				},
			},
		).
		Build()
	client := NewWithAPI(mock, "bucket")

	var entries []version.Entry
	err := version.Normalize(context.Background(), client.ListVersions("p/"), func(e version.Entry) {
		entries = append(entries, e)
	})

	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, version.Entry{
		Key: "p/a.txt", VersionID: "v2", LastModified: t0.Add(time.Hour), Size: 10, IsLatest: true,
	}, entries[0])
	assert.Equal(t, "v1", entries[1].VersionID)
	assert.True(t, entries[2].IsDeleteMarker)
	assert.Equal(t, "p/b.txt", entries[2].Key)
}

func TestClient_ListVersionsUnsupported(t *testing.T) {
	client := NewWithAPI(testutil.NewMockBuilder().WithVersioningUnsupported().Build(), "bucket")

	err := version.Normalize(context.Background(), client.ListVersions(""), func(version.Entry) {})

	require.Error(t, err)
	assert.True(t, wserrors.IsVersioningUnsupported(err))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no such key", &types.NoSuchKey{}, wserrors.ErrObjectNotFound},
		{"not found", &types.NotFound{}, wserrors.ErrObjectNotFound},
		{"no such version", testutil.NewAPIError("NoSuchVersion", "x"), wserrors.ErrObjectNotFound},
		{"no such bucket", &types.NoSuchBucket{}, wserrors.ErrBucketNotFound},
		{"access denied", testutil.NewAPIError("AccessDenied", "x"), wserrors.ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	plain := errors.New("connection reset")
	assert.Same(t, plain, classify(plain))
	assert.NoError(t, classify(nil))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(context.Background(), storage.Settings{Endpoint: "https://s3.wasabisys.com"})
	assert.ErrorIs(t, err, wserrors.ErrInvalidConfig)

	_, err = New(context.Background(), storage.Settings{Bucket: "b"})
	assert.ErrorIs(t, err, wserrors.ErrInvalidConfig)

	_, err = New(context.Background(), storage.Settings{
		Bucket:       "b",
		Endpoint:     "https://s3.wasabisys.com",
		CABundlePath: "/nonexistent/ca.pem",
	})
	assert.ErrorIs(t, err, wserrors.ErrInvalidConfig)
}

func TestNew_Success(t *testing.T) {
	client, err := New(context.Background(), storage.Settings{
		Bucket:          "b",
		Endpoint:        "https://s3.wasabisys.com",
		AccessKeyID:     "id",
		SecretAccessKey: "secret",
	}, WithRetryer(NewRetryer(2, 0, 0)))

	require.NoError(t, err)
	assert.Equal(t, "b", client.Bucket())
	assert.Equal(t, int32(maxPageSize), client.pageSize)
}

func TestClient_EmptyBucket(t *testing.T) {
	client := NewWithAPI(testutil.NewMockBuilder().WithEmptyBucket().Build(), "bucket")

	var objects int
	err := storage.WalkObjects(context.Background(), client.ListObjects("none/"), func(storage.Object) {
		objects++
	})
	require.NoError(t, err)
	assert.Zero(t, objects)

	r := version.NewResolver(time.Now())
	require.NoError(t, version.Collect(context.Background(), client.ListVersions("none/"), r))
	assert.Empty(t, r.Result())
}

func TestClient_GeneratedListings(t *testing.T) {
	gen := testutil.NewTestDataGenerator(11)
	objects := gen.GenerateObjectList(25, "data/")
	markers := gen.GenerateDeleteMarkers(3)

	mock := testutil.NewMockBuilder().
		WithListObjectsV2(func(_ context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
			return &s3.ListObjectsV2Output{Contents: objects, IsTruncated: testutil.BoolPtr(false)}, nil
		}).
		WithListObjectVersions(func(_ context.Context, in *s3.ListObjectVersionsInput) (*s3.ListObjectVersionsOutput, error) {
			return &s3.ListObjectVersionsOutput{DeleteMarkers: markers, IsTruncated: testutil.BoolPtr(false)}, nil
		}).
		Build()
	client := NewWithAPI(mock, "bucket")

	var total int64
	var count int
	err := storage.WalkObjects(context.Background(), client.ListObjects("data/"), func(o storage.Object) {
		count++
		total += o.Size
	})
	require.NoError(t, err)
	assert.Equal(t, 25, count)
	var want int64
	for _, o := range objects {
		want += *o.Size
	}
	assert.Equal(t, want, total)

	var seen []version.Entry
	err = version.Normalize(context.Background(), client.ListVersions(""), func(e version.Entry) {
		seen = append(seen, e)
	})
	require.NoError(t, err)
	require.Len(t, seen, 3)
	for _, e := range seen {
		assert.True(t, e.IsDeleteMarker)
		assert.False(t, e.Downloadable())
	}
}

func TestClient_GetPassesVersion(t *testing.T) {
	var got *s3.GetObjectInput
	mock := testutil.NewMockBuilder().
		WithGetObject(func(_ context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			got = in
			return &s3.GetObjectOutput{}, nil
		}).
		Build()
	client := NewWithAPI(mock, "bucket")

	body, err := client.Get(context.Background(), "k", "v9")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)

	assert.Empty(t, data)
	assert.Equal(t, "bucket", testutil.StringValue(got.Bucket))
	assert.Equal(t, "v9", testutil.StringValue(got.VersionId))
}
