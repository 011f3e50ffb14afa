package testutil

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/S-Muro0526/wasabi/internal/errors"
	"github.com/S-Muro0526/wasabi/internal/storage"
	"github.com/S-Muro0526/wasabi/internal/version"
)

// FakeStore is an in-memory storage.Client.
//
// Objects added with Put are current objects. Versions and delete markers
// added with PutVersion and PutDeleteMarker form the version history and can
// be fetched by version id. Errors can be injected per key.
type FakeStore struct {
	BucketName string

	// PageSize is the number of records per listing page; 0 means 2
	PageSize int

	// HeadErr and GetErr fail Head and Get for a key
	HeadErr map[string]error
	GetErr  map[string]error

	// BodyErr makes the body of a key fail after half its bytes are read
	BodyErr map[string]error

	// ListErr and ListVersionsErr fail the first listing page
	ListErr         error
	ListVersionsErr error

	mu       sync.Mutex
	current  map[string][]byte
	history  []version.Entry
	contents map[string][]byte // key + "@" + version id
	heads    []string
	gets     []string
}

var _ storage.Client = (*FakeStore)(nil)

// NewFakeStore creates an empty FakeStore.
func NewFakeStore(bucket string) *FakeStore {
	return &FakeStore{
		BucketName: bucket,
		HeadErr:    make(map[string]error),
		GetErr:     make(map[string]error),
		BodyErr:    make(map[string]error),
		current:    make(map[string][]byte),
		contents:   make(map[string][]byte),
	}
}

// Put stores data as the current object for key.
func (s *FakeStore) Put(key string, data []byte) *FakeStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current[key] = data
	return s
}

// PutVersion adds a historical version of key.
func (s *FakeStore) PutVersion(key, versionID string, modified time.Time, data []byte) *FakeStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, version.Entry{
		Key:          key,
		VersionID:    versionID,
		LastModified: modified,
		Size:         int64(len(data)),
	})
	s.contents[key+"@"+versionID] = data
	return s
}

// PutDeleteMarker adds a delete marker to the history of key.
func (s *FakeStore) PutDeleteMarker(key, versionID string, modified time.Time) *FakeStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, version.Entry{
		Key:            key,
		VersionID:      versionID,
		LastModified:   modified,
		IsDeleteMarker: true,
	})
	return s
}

// Heads returns the keys passed to Head, in call order.
func (s *FakeStore) Heads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.heads...)
}

// Gets returns the keys passed to Get, in call order.
func (s *FakeStore) Gets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.gets...)
}

// Bucket returns the bucket name.
func (s *FakeStore) Bucket() string {
	return s.BucketName
}

// ListObjects lists the current objects under prefix in key order.
//
//nolint:ireturn // storage.ObjectPager is the contract under test.
func (s *FakeStore) ListObjects(prefix string) storage.ObjectPager {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.current))
	for key := range s.current {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	objects := make([]storage.Object, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, storage.Object{
			Key:          key,
			Size:         int64(len(s.current[key])),
			LastModified: FixedTime,
		})
	}

	return &fakeObjectPager{objects: objects, size: s.pageSize(), err: s.ListErr}
}

// ListVersions lists the history under prefix in insertion order.
//
//nolint:ireturn // version.Pager is the contract under test.
func (s *FakeStore) ListVersions(prefix string) version.Pager {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []version.Entry
	for _, e := range s.history {
		if strings.HasPrefix(e.Key, prefix) {
			entries = append(entries, e)
		}
	}

	return &fakeVersionPager{entries: entries, size: s.pageSize(), err: s.ListVersionsErr}
}

// Head returns metadata for the current object or the given version.
func (s *FakeStore) Head(ctx context.Context, key, versionID string) (*storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heads = append(s.heads, key)

	if err := s.HeadErr[key]; err != nil {
		return nil, err
	}
	data, ok := s.lookup(key, versionID)
	if !ok {
		return nil, errors.NewObjectError("head", s.BucketName, key, errors.ErrObjectNotFound).WithVersion(versionID)
	}
	return &storage.ObjectInfo{
		Key:          key,
		VersionID:    versionID,
		Size:         int64(len(data)),
		LastModified: FixedTime,
	}, nil
}

// Get opens the current object or the given version.
func (s *FakeStore) Get(ctx context.Context, key, versionID string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets = append(s.gets, key)

	if err := s.GetErr[key]; err != nil {
		return nil, err
	}
	data, ok := s.lookup(key, versionID)
	if !ok {
		return nil, errors.NewObjectError("get", s.BucketName, key, errors.ErrObjectNotFound).WithVersion(versionID)
	}
	if err := s.BodyErr[key]; err != nil {
		return io.NopCloser(&failingReader{data: data[:len(data)/2], err: err}), nil
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *FakeStore) lookup(key, versionID string) ([]byte, bool) {
	if versionID == "" {
		data, ok := s.current[key]
		return data, ok
	}
	data, ok := s.contents[key+"@"+versionID]
	return data, ok
}

func (s *FakeStore) pageSize() int {
	if s.PageSize <= 0 {
		return 2
	}
	return s.PageSize
}

type fakeObjectPager struct {
	objects []storage.Object
	size    int
	err     error
	next    int
	done    bool
}

func (p *fakeObjectPager) HasMorePages() bool {
	return !p.done
}

func (p *fakeObjectPager) NextPage(context.Context) (*storage.ObjectPage, error) {
	if p.err != nil {
		p.done = true
		return nil, p.err
	}
	end := p.next + p.size
	if end >= len(p.objects) {
		end = len(p.objects)
		p.done = true
	}
	page := &storage.ObjectPage{Objects: p.objects[p.next:end]}
	p.next = end
	return page, nil
}

type fakeVersionPager struct {
	entries []version.Entry
	size    int
	err     error
	next    int
	done    bool
}

func (p *fakeVersionPager) HasMorePages() bool {
	return !p.done
}

func (p *fakeVersionPager) NextPage(context.Context) (*version.Page, error) {
	if p.err != nil {
		p.done = true
		return nil, p.err
	}
	end := p.next + p.size
	if end >= len(p.entries) {
		end = len(p.entries)
		p.done = true
	}
	page := &version.Page{}
	for _, e := range p.entries[p.next:end] {
		if e.IsDeleteMarker {
			page.DeleteMarkers = append(page.DeleteMarkers, e)
		} else {
			page.Versions = append(page.Versions, e)
		}
	}
	p.next = end
	return page, nil
}

type failingReader struct {
	data []byte
	err  error
	off  int
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.off >= len(r.data) {
		return 0, r.err
	}
	n := copy(p, r.data[r.off:])
	r.off += n
	return n, nil
}
