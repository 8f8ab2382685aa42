// Package memory is an in-process unit store.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goodnatureofminers/btcgraph/internal/graph/store"
	"github.com/ipfs/go-cid"
)

// Store keeps units and roots in maps guarded by a RWMutex.
type Store struct {
	mu     sync.RWMutex
	units  map[cid.Cid][]byte
	roots  map[uint64]cid.Cid
	last   uint64
	closed bool
}

// New returns an empty store.
func New() *Store {
	return &Store{
		units: make(map[cid.Cid][]byte),
		roots: make(map[uint64]cid.Cid),
	}
}

func (s *Store) Put(_ context.Context, c cid.Cid, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	if _, ok := s.units[c]; !ok {
		s.units[c] = append([]byte(nil), data...)
	}
	return nil
}

func (s *Store) Get(_ context.Context, c cid.Cid) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errClosed
	}
	data, ok := s.units[c]
	if !ok {
		return nil, fmt.Errorf("unit %s: %w", c, store.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (s *Store) PutRoot(_ context.Context, height uint64, root cid.Cid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	s.roots[height] = root
	if height > s.last {
		s.last = height
	}
	return nil
}

func (s *Store) Root(_ context.Context, height uint64) (cid.Cid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	root, ok := s.roots[height]
	if !ok {
		return cid.Undef, fmt.Errorf("root at height %d: %w", height, store.ErrNotFound)
	}
	return root, nil
}

func (s *Store) LastHeight(context.Context) (uint64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.roots) == 0 {
		return 0, false, nil
	}
	return s.last, true, nil
}

// Len returns the number of stored units.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.units)
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var errClosed = errors.New("memory store closed")
