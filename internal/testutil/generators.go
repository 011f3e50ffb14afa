// Package testutil provides test data generators.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/S-Muro0526/wasabi/internal/version"
)

// TestDataGenerator provides methods for generating test data.
type TestDataGenerator struct {
	rand *rand.Rand
}

// NewTestDataGenerator creates a new test data generator with a seeded random source.
func NewTestDataGenerator(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// GenerateObjectList generates a list of test S3 objects.
func (g *TestDataGenerator) GenerateObjectList(count int, prefix string) []types.Object {
	objects := make([]types.Object, count)

	for i := 0; i < count; i++ {
		key := fmt.Sprintf("%sobject-%04d.txt", prefix, i)
		size := int64(g.rand.Intn(1000000) + 1000) // 1KB to 1MB
		modified := FixedTime.Add(time.Duration(i) * time.Minute)
		objects[i] = CreateTestObject(key, size, modified)
	}

	return objects
}

// GenerateDeleteMarkers generates delete markers for versioned buckets.
func (g *TestDataGenerator) GenerateDeleteMarkers(count int) []types.DeleteMarkerEntry {
	markers := make([]types.DeleteMarkerEntry, count)

	for i := 0; i < count; i++ {
		markers[i] = CreateTestDeleteMarker(
			fmt.Sprintf("deleted-object-%04d", i),
			fmt.Sprintf("version-%d", g.rand.Int63()),
			FixedTime.Add(time.Duration(i)*time.Hour),
			i == count-1,
		)
	}

	return markers
}

// GenerateHistory generates a random version history for keys: each key gets
// between one and maxPerKey entries spread over span starting at start, with
// roughly one in four being a delete marker and one in ten having no content.
func (g *TestDataGenerator) GenerateHistory(
	keys []string,
	maxPerKey int,
	start time.Time,
	span time.Duration,
) []version.Entry {
	var entries []version.Entry

	for _, key := range keys {
		n := g.rand.Intn(maxPerKey) + 1
		for i := 0; i < n; i++ {
			e := version.Entry{
				Key:          key,
				VersionID:    fmt.Sprintf("%s-v%d-%d", key, i, g.rand.Intn(1000)),
				LastModified: start.Add(time.Duration(g.rand.Int63n(int64(span)))).Truncate(time.Second),
			}
			switch r := g.rand.Intn(20); {
			case r < 5:
				e.IsDeleteMarker = true
			case r < 7:
				e.Size = 0
			default:
				e.Size = int64(g.rand.Intn(4096) + 1)
			}
			entries = append(entries, e)
		}
	}

	return entries
}
