package store

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ipfs/go-cid"
)

// Cached is a read-through LRU cache in front of a Store. Units are content addressed, so cached
// entries never go stale.
type Cached struct {
	Store

	entries *lru.Cache[cid.Cid, []byte]
}

// NewCached wraps s with a cache of at most capacity units.
func NewCached(s Store, capacity int) (*Cached, error) {
	entries, err := lru.New[cid.Cid, []byte](capacity)
	if err != nil {
		return nil, fmt.Errorf("unit cache of %d entries: %w", capacity, err)
	}
	return &Cached{Store: s, entries: entries}, nil
}

// Get returns the cached bytes or loads them from the underlying store.
func (c *Cached) Get(ctx context.Context, key cid.Cid) ([]byte, error) {
	if data, ok := c.entries.Get(key); ok {
		return data, nil
	}

	data, err := c.Store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, data)
	return data, nil
}

// Put writes through and caches the unit.
func (c *Cached) Put(ctx context.Context, key cid.Cid, data []byte) error {
	if err := c.Store.Put(ctx, key, data); err != nil {
		return err
	}
	c.entries.Add(key, data)
	return nil
}

// Len reports the number of cached units.
func (c *Cached) Len() int {
	return c.entries.Len()
}
