package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slicePager struct {
	pages []*ObjectPage
	err   error
	next  int
}

func (p *slicePager) HasMorePages() bool {
	return p.next < len(p.pages) || (p.err != nil && p.next == len(p.pages))
}

func (p *slicePager) NextPage(context.Context) (*ObjectPage, error) {
	if p.next == len(p.pages) {
		p.next++
		return nil, p.err
	}
	page := p.pages[p.next]
	p.next++
	return page, nil
}

func TestWalkObjects(t *testing.T) {
	pager := &slicePager{pages: []*ObjectPage{
		{Objects: []Object{{Key: "docs/", Size: 0}, {Key: "docs/a.txt", Size: 3}}},
		nil,
		{Objects: []Object{{Key: "docs/sub/", Size: 0}, {Key: "docs/sub/b.txt", Size: 4}}},
	}}

	var keys []string
	err := WalkObjects(context.Background(), pager, func(o Object) {
		keys = append(keys, o.Key)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"docs/a.txt", "docs/sub/b.txt"}, keys)
}

func TestWalkObjects_Error(t *testing.T) {
	listErr := errors.New("boom")
	pager := &slicePager{
		pages: []*ObjectPage{{Objects: []Object{{Key: "a", Size: 1}}}},
		err:   listErr,
	}

	var n int
	err := WalkObjects(context.Background(), pager, func(Object) { n++ })

	assert.ErrorIs(t, err, listErr)
	assert.Equal(t, 1, n)
}
