// Package version resolves the state of a versioned prefix at a point in time.
//
// A bucket with versioning enabled keeps every historical state of every key:
// object versions and delete markers. The resolver reduces that history to the
// set of objects that existed, with content, at a target timestamp.
//
// Resolution is order-independent. Listing pages can arrive in any order and
// the same input always yields the same download set, including when two
// entries for a key share a modification time.
package version

import (
	"sort"
	"time"
)

// Entry is one historical state of one object.
type Entry struct {
	Key            string
	VersionID      string
	LastModified   time.Time
	Size           int64
	IsDeleteMarker bool
	IsLatest       bool
}

// Downloadable reports whether the entry carries content that can be fetched.
func (e Entry) Downloadable() bool {
	return !e.IsDeleteMarker && e.Size > 0
}

// supersedes reports whether e replaces cur as the retained entry for a key.
// Identical timestamps are broken by IsLatest, then by delete markers over
// versions, then by the greater version id.
func (e Entry) supersedes(cur Entry) bool {
	switch {
	case e.LastModified.After(cur.LastModified):
		return true
	case e.LastModified.Before(cur.LastModified):
		return false
	case e.IsLatest != cur.IsLatest:
		return e.IsLatest
	case e.IsDeleteMarker != cur.IsDeleteMarker:
		return e.IsDeleteMarker
	default:
		return e.VersionID > cur.VersionID
	}
}

// Resolver builds the resolution state incrementally while listing pages
// stream in. It holds at most one entry per key.
type Resolver struct {
	target time.Time
	state  map[string]Entry
}

// NewResolver creates a Resolver for the given cutoff. Entries modified after
// target are ignored.
func NewResolver(target time.Time) *Resolver {
	return &Resolver{
		target: target,
		state:  make(map[string]Entry),
	}
}

// Add offers an entry to the resolver and reports whether it is now the
// retained entry for its key.
func (r *Resolver) Add(e Entry) bool {
	if e.LastModified.After(r.target) {
		return false
	}
	if cur, ok := r.state[e.Key]; ok && !e.supersedes(cur) {
		return false
	}
	r.state[e.Key] = e
	return true
}

// Len returns the number of keys with a retained entry, before filtering.
func (r *Resolver) Len() int {
	return len(r.state)
}

// Result returns the download set: for each key, the winning entry if it is
// downloadable. Keys whose winning entry is a delete marker or has no content
// are excluded entirely.
func (r *Resolver) Result() map[string]Entry {
	out := make(map[string]Entry, len(r.state))
	for key, e := range r.state {
		if e.Downloadable() {
			out[key] = e
		}
	}
	return out
}

// Resolve runs a Resolver over entries and returns its result.
func Resolve(entries []Entry, target time.Time) map[string]Entry {
	r := NewResolver(target)
	for _, e := range entries {
		r.Add(e)
	}
	return r.Result()
}

// Sorted returns the entries of a download set ordered by key.
func Sorted(set map[string]Entry) []Entry {
	out := make([]Entry, 0, len(set))
	for _, e := range set {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}
