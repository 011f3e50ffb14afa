// Package storage defines the object store operations the downloader needs.
//
// Backends map their SDK responses into the types below at the boundary, so
// nothing above this package sees SDK-shaped data.
package storage

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/S-Muro0526/wasabi/internal/version"
)

// Object is one current object in a listing.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
}

// ObjectInfo is the metadata returned by a head request.
type ObjectInfo struct {
	Key          string
	VersionID    string
	Size         int64
	LastModified time.Time
	ContentType  string
	ETag         string
}

// ObjectPage is one page of a current-object listing.
type ObjectPage struct {
	Objects []Object
}

// ObjectPager walks a paginated current-object listing.
type ObjectPager interface {
	// HasMorePages returns true if there are more pages to fetch.
	HasMorePages() bool

	// NextPage fetches the next page of results.
	NextPage(ctx context.Context) (*ObjectPage, error)
}

// Client is a single-bucket view of an object store.
type Client interface {
	// Bucket returns the bucket all operations target.
	Bucket() string

	// ListObjects lists the current objects under prefix.
	ListObjects(prefix string) ObjectPager

	// ListVersions lists every version and delete marker under prefix.
	ListVersions(prefix string) version.Pager

	// Head returns object metadata. An empty versionID selects the current version.
	Head(ctx context.Context, key, versionID string) (*ObjectInfo, error)

	// Get opens the object body. An empty versionID selects the current version.
	Get(ctx context.Context, key, versionID string) (io.ReadCloser, error)
}

// WalkObjects streams every downloadable object of every page to fn.
// Directory placeholders (keys ending in "/") are skipped.
func WalkObjects(ctx context.Context, pager ObjectPager, fn func(Object)) error {
	for pager.HasMorePages() {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := pager.NextPage(ctx)
		if err != nil {
			return err
		}
		if page == nil {
			continue
		}

		for _, obj := range page.Objects {
			if obj.Key == "" || strings.HasSuffix(obj.Key, "/") {
				continue
			}
			fn(obj)
		}
	}
	return nil
}
