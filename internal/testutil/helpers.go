// Package testutil provides test helper functions.
package testutil

import (
	"crypto/md5"
	"fmt"
	"math/rand"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// FixedTime is a stable timestamp for test fixtures.
var FixedTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// StringPtr returns a pointer to the given string.
// This is useful for AWS SDK inputs that require string pointers.
func StringPtr(s string) *string {
	return aws.String(s)
}

// StringValue dereferences s, returning "" for nil.
func StringValue(s *string) string {
	return aws.ToString(s)
}

// Int64Ptr returns a pointer to the given int64.
func Int64Ptr(i int64) *int64 {
	return aws.Int64(i)
}

// Int32Ptr returns a pointer to the given int32.
func Int32Ptr(i int32) *int32 {
	return aws.Int32(i)
}

// BoolPtr returns a pointer to the given bool.
func BoolPtr(b bool) *bool {
	return aws.Bool(b)
}

// TimePtr returns a pointer to the given time.
func TimePtr(t time.Time) *time.Time {
	return &t
}

// NewAPIError builds a smithy API error with the given S3 error code.
func NewAPIError(code, message string) error {
	return &smithy.GenericAPIError{
		Code:    code,
		Message: message,
		Fault:   smithy.FaultClient,
	}
}

// GenerateRandomData generates random bytes of the specified size.
func GenerateRandomData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(rand.Intn(256))
	}
	return data
}

// CreateTestObject creates a test S3 object structure.
// This is useful for mocking ListObjectsV2 responses.
func CreateTestObject(key string, size int64, lastModified time.Time) types.Object {
	return types.Object{
		Key:          StringPtr(key),
		Size:         Int64Ptr(size),
		LastModified: TimePtr(lastModified),
		ETag:         StringPtr(fmt.Sprintf(`"%x"`, md5.Sum([]byte(key)))),
		StorageClass: types.ObjectStorageClassStandard,
	}
}

// CreateTestObjectVersion creates a test S3 object version structure.
// This is useful for testing versioned bucket operations.
func CreateTestObjectVersion(key, versionID string, size int64, lastModified time.Time, isLatest bool) types.ObjectVersion {
	return types.ObjectVersion{
		Key:          StringPtr(key),
		VersionId:    StringPtr(versionID),
		Size:         Int64Ptr(size),
		LastModified: TimePtr(lastModified),
		IsLatest:     BoolPtr(isLatest),
		ETag:         StringPtr(fmt.Sprintf(`"%x"`, md5.Sum([]byte(key+versionID)))),
	}
}

// CreateTestDeleteMarker creates a test S3 delete marker entry.
func CreateTestDeleteMarker(key, versionID string, lastModified time.Time, isLatest bool) types.DeleteMarkerEntry {
	return types.DeleteMarkerEntry{
		Key:          StringPtr(key),
		VersionId:    StringPtr(versionID),
		LastModified: TimePtr(lastModified),
		IsLatest:     BoolPtr(isLatest),
	}
}
