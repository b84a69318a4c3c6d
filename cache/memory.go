// Package cache provides the session-scoped post cache shared by views.
package cache

import (
	"sync"

	timelines "github.com/anatolykoptev/go-timelines"
)

// Memory is an in-memory PostCache. It stores and hands out copies, so a
// cached post is never mutated behind a reader's back.
type Memory struct {
	posts sync.Map // timelines.PostID -> *timelines.Post
}

var _ timelines.PostCache = (*Memory)(nil)

// NewMemory returns an empty cache.
func NewMemory() *Memory {
	return &Memory{}
}

// LookupByID returns a copy of the cached post.
func (c *Memory) LookupByID(id timelines.PostID) (*timelines.Post, bool) {
	v, ok := c.posts.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*timelines.Post).Clone(), true
}

// Upsert stores a copy of p, replacing any previous entry whole.
func (c *Memory) Upsert(p *timelines.Post) {
	if p == nil || p.StatusID.IsZero() {
		return
	}
	c.posts.Store(p.StatusID, p.Clone())
}

// Len returns the number of cached posts.
func (c *Memory) Len() int {
	n := 0
	c.posts.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
