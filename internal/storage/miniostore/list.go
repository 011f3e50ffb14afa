package miniostore

import (
	"context"

	"github.com/minio/minio-go/v7"

	"github.com/S-Muro0526/wasabi/internal/errors"
	"github.com/S-Muro0526/wasabi/internal/storage"
	"github.com/S-Muro0526/wasabi/internal/version"
)

// stream groups the minio listing channel into fixed-size pages. The listing
// starts on the first call to next, with that call's context.
type stream struct {
	client    *Client
	prefix    string
	versions  bool
	ch        <-chan minio.ObjectInfo
	cancel    context.CancelFunc
	exhausted bool
}

func (c *Client) stream(prefix string, versions bool) *stream {
	return &stream{
		client:   c,
		prefix:   prefix,
		versions: versions,
	}
}

func (s *stream) more() bool {
	return !s.exhausted
}

// next returns up to pageSize entries. A listing error ends the stream.
func (s *stream) next(ctx context.Context) ([]minio.ObjectInfo, error) {
	if s.ch == nil {
		lctx, cancel := context.WithCancel(ctx)
		s.cancel = cancel
		s.ch = s.client.api.ListObjects(lctx, s.client.bucket, minio.ListObjectsOptions{
			Prefix:       s.prefix,
			Recursive:    true,
			WithVersions: s.versions,
		})
	}

	batch := make([]minio.ObjectInfo, 0, s.client.pageSize)
	for len(batch) < s.client.pageSize {
		select {
		case <-ctx.Done():
			s.stop()
			return nil, ctx.Err()
		case info, ok := <-s.ch:
			if !ok {
				s.stop()
				return batch, nil
			}
			if info.Err != nil {
				s.stop()
				op := "listObjects"
				if s.versions {
					op = "listVersions"
				}
				return nil, errors.NewError(op, classifyListing(info.Err, s.versions)).WithBucket(s.client.bucket)
			}
			batch = append(batch, info)
		}
	}
	return batch, nil
}

func (s *stream) stop() {
	s.exhausted = true
	if s.cancel != nil {
		s.cancel()
	}
}

type objectPager struct {
	stream *stream
}

// HasMorePages returns true if there are more pages to fetch.
func (p *objectPager) HasMorePages() bool {
	return p.stream.more()
}

// NextPage fetches the next page of results.
func (p *objectPager) NextPage(ctx context.Context) (*storage.ObjectPage, error) {
	batch, err := p.stream.next(ctx)
	if err != nil {
		return nil, err
	}

	page := &storage.ObjectPage{Objects: make([]storage.Object, 0, len(batch))}
	for _, info := range batch {
		page.Objects = append(page.Objects, storage.Object{
			Key:          info.Key,
			Size:         info.Size,
			LastModified: info.LastModified.UTC(),
			ETag:         info.ETag,
		})
	}
	return page, nil
}

type versionPager struct {
	stream *stream
}

// HasMorePages returns true if there are more pages to fetch.
func (p *versionPager) HasMorePages() bool {
	return p.stream.more()
}

// NextPage fetches the next page of results.
func (p *versionPager) NextPage(ctx context.Context) (*version.Page, error) {
	batch, err := p.stream.next(ctx)
	if err != nil {
		return nil, err
	}

	page := &version.Page{}
	for _, info := range batch {
		e := version.Entry{
			Key:          info.Key,
			VersionID:    info.VersionID,
			LastModified: info.LastModified.UTC(),
			Size:         info.Size,
			IsLatest:     info.IsLatest,
		}
		if info.IsDeleteMarker {
			e.IsDeleteMarker = true
			e.Size = 0
			page.DeleteMarkers = append(page.DeleteMarkers, e)
			continue
		}
		page.Versions = append(page.Versions, e)
	}
	return page, nil
}
