package version

import (
	"context"
	"strings"
)

// Page is one page of a version listing. Versions and delete markers are
// reported separately, as the object store returns them.
type Page struct {
	Versions      []Entry
	DeleteMarkers []Entry
}

// Pager walks a paginated version listing.
type Pager interface {
	// HasMorePages returns true if there are more pages to fetch.
	HasMorePages() bool

	// NextPage fetches the next page of results.
	NextPage(ctx context.Context) (*Page, error)
}

// Normalize streams every entry of every page to fn, one page at a time.
//
// Delete markers are flagged and carry no size. Keys ending in "/" are
// directory placeholders and are dropped. The first listing error stops the
// walk and is returned unchanged.
func Normalize(ctx context.Context, pager Pager, fn func(Entry)) error {
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

		for _, e := range page.Versions {
			if isPlaceholder(e.Key) {
				continue
			}
			e.IsDeleteMarker = false
			fn(e)
		}
		for _, e := range page.DeleteMarkers {
			if isPlaceholder(e.Key) {
				continue
			}
			e.IsDeleteMarker = true
			e.Size = 0
			fn(e)
		}
	}
	return nil
}

// Collect resolves a listing against target while it streams.
func Collect(ctx context.Context, pager Pager, r *Resolver) error {
	return Normalize(ctx, pager, func(e Entry) {
		r.Add(e)
	})
}

func isPlaceholder(key string) bool {
	return key == "" || strings.HasSuffix(key, "/")
}
