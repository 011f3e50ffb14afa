package testutil

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// MockBuilder provides a fluent interface for building MockS3Client instances.
type MockBuilder struct {
	client *MockS3Client
}

// NewMockBuilder creates a new MockBuilder.
func NewMockBuilder() *MockBuilder {
	return &MockBuilder{
		client: &MockS3Client{},
	}
}

// Build returns the configured MockS3Client.
func (b *MockBuilder) Build() *MockS3Client {
	return b.client
}

// WithListObjectsV2 configures the ListObjectsV2 behavior.
func (b *MockBuilder) WithListObjectsV2(
	fn func(context.Context, *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error),
) *MockBuilder {
	b.client.ListObjectsV2Func = func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return fn(ctx, params)
	}
	return b
}

// WithListObjectVersions configures the ListObjectVersions behavior.
func (b *MockBuilder) WithListObjectVersions(
	fn func(context.Context, *s3.ListObjectVersionsInput) (*s3.ListObjectVersionsOutput, error),
) *MockBuilder {
	b.client.ListObjectVersionsFunc = func(ctx context.Context, params *s3.ListObjectVersionsInput, _ ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithHeadObject configures the HeadObject behavior.
func (b *MockBuilder) WithHeadObject(
	fn func(context.Context, *s3.HeadObjectInput) (*s3.HeadObjectOutput, error),
) *MockBuilder {
	b.client.HeadObjectFunc = func(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithGetObject configures the GetObject behavior.
func (b *MockBuilder) WithGetObject(
	fn func(context.Context, *s3.GetObjectInput) (*s3.GetObjectOutput, error),
) *MockBuilder {
	b.client.GetObjectFunc = func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithObjects serves the given key/content pairs from ListObjectsV2,
// HeadObject and GetObject. Missing keys produce S3 not-found errors.
func (b *MockBuilder) WithObjects(objects map[string][]byte) *MockBuilder {
	keys := make([]string, 0, len(objects))
	for key := range objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	b.client.ListObjectsV2Func = func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		prefix := StringValue(params.Prefix)
		out := &s3.ListObjectsV2Output{
			Name:        params.Bucket,
			Prefix:      params.Prefix,
			IsTruncated: BoolPtr(false),
		}
		for _, key := range keys {
			if strings.HasPrefix(key, prefix) {
				out.Contents = append(out.Contents, CreateTestObject(key, int64(len(objects[key])), FixedTime))
			}
		}
		out.KeyCount = Int32Ptr(int32(len(out.Contents)))
		return out, nil
	}

	b.client.HeadObjectFunc = func(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
		data, ok := objects[StringValue(params.Key)]
		if !ok {
			return nil, &types.NotFound{Message: StringPtr("Not Found")}
		}
		return &s3.HeadObjectOutput{
			ContentLength: Int64Ptr(int64(len(data))),
			LastModified:  TimePtr(FixedTime),
			VersionId:     params.VersionId,
		}, nil
	}

	b.client.GetObjectFunc = func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		data, ok := objects[StringValue(params.Key)]
		if !ok {
			return nil, &types.NoSuchKey{Message: StringPtr("The specified key does not exist.")}
		}
		return &s3.GetObjectOutput{
			Body:          io.NopCloser(bytes.NewReader(data)),
			ContentLength: Int64Ptr(int64(len(data))),
			VersionId:     params.VersionId,
		}, nil
	}
	return b
}

// WithVersionPages serves the given outputs from ListObjectVersions in order.
// Every output except the last is marked truncated with a key marker.
func (b *MockBuilder) WithVersionPages(pages ...*s3.ListObjectVersionsOutput) *MockBuilder {
	for i, page := range pages {
		last := i == len(pages)-1
		page.IsTruncated = BoolPtr(!last)
		if !last {
			page.NextKeyMarker = StringPtr(pageMarker(i + 1))
			page.NextVersionIdMarker = StringPtr(pageMarker(i + 1))
		}
	}

	b.client.ListObjectVersionsFunc = func(ctx context.Context, params *s3.ListObjectVersionsInput, _ ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error) {
		if len(pages) == 0 {
			return &s3.ListObjectVersionsOutput{IsTruncated: BoolPtr(false)}, nil
		}
		marker := StringValue(params.KeyMarker)
		for i := range pages {
			if pageMarker(i) == marker || (i == 0 && marker == "") {
				return pages[i], nil
			}
		}
		return nil, &smithy.GenericAPIError{Code: "InvalidArgument", Message: "unknown marker " + marker}
	}
	return b
}

// WithObjectNotFound configures the mock to return object not found errors.
func (b *MockBuilder) WithObjectNotFound() *MockBuilder {
	b.client.GetObjectFunc = func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return nil, &types.NoSuchKey{Message: StringPtr("The specified key does not exist.")}
	}
	b.client.HeadObjectFunc = func(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
		return nil, &types.NotFound{Message: StringPtr("Not Found")}
	}
	return b
}

// WithEmptyBucket configures the mock to return empty listings.
func (b *MockBuilder) WithEmptyBucket() *MockBuilder {
	b.client.ListObjectsV2Func = func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return &s3.ListObjectsV2Output{
			Name:        params.Bucket,
			Prefix:      params.Prefix,
			MaxKeys:     params.MaxKeys,
			IsTruncated: BoolPtr(false),
			KeyCount:    Int32Ptr(0),
		}, nil
	}
	b.client.ListObjectVersionsFunc = func(ctx context.Context, params *s3.ListObjectVersionsInput, _ ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error) {
		return &s3.ListObjectVersionsOutput{
			Name:        params.Bucket,
			Prefix:      params.Prefix,
			IsTruncated: BoolPtr(false),
		}, nil
	}
	return b
}

// WithVersioningUnsupported makes ListObjectVersions fail the way an
// unversioned Wasabi bucket does.
func (b *MockBuilder) WithVersioningUnsupported() *MockBuilder {
	b.client.ListObjectVersionsFunc = func(ctx context.Context, params *s3.ListObjectVersionsInput, _ ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error) {
		return nil, NewAPIError("InvalidRequest", "Versioning is not enabled")
	}
	return b
}

// WithAccessDenied configures the mock to return access denied errors.
func (b *MockBuilder) WithAccessDenied() *MockBuilder {
	accessDeniedErr := NewAPIError("AccessDenied", "Access Denied")

	b.client.GetObjectFunc = func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return nil, accessDeniedErr
	}
	b.client.HeadObjectFunc = func(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
		return nil, accessDeniedErr
	}
	b.client.ListObjectsV2Func = func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return nil, accessDeniedErr
	}
	b.client.ListObjectVersionsFunc = func(ctx context.Context, params *s3.ListObjectVersionsInput, _ ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error) {
		return nil, accessDeniedErr
	}
	return b
}

func pageMarker(i int) string {
	return "page-" + strconv.Itoa(i)
}
