// Package store persists graph units and the root CID recorded for each block height.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
)

// ErrNotFound is returned when no unit or root is stored under the requested key.
var ErrNotFound = errors.New("not found")

// PutUnits writes units through the store's batch path when it has one.
func PutUnits(ctx context.Context, s Store, units []codec.Unit) error {
	if len(units) == 0 {
		return nil
	}
	if bw, ok := s.(BatchWriter); ok {
		return bw.PutUnits(ctx, units)
	}
	for _, u := range units {
		if err := s.Put(ctx, u.CID, u.Data); err != nil {
			return fmt.Errorf("put unit %s: %w", u.CID, err)
		}
	}
	return nil
}

// AsBatchWriter returns s as a BatchWriter. Stores without a batch path write one unit at a time.
func AsBatchWriter(s Store) BatchWriter {
	if bw, ok := s.(BatchWriter); ok {
		return bw
	}
	return putEach{s}
}

type putEach struct {
	Store
}

func (p putEach) PutUnits(ctx context.Context, units []codec.Unit) error {
	return PutUnits(ctx, p.Store, units)
}

// Loader adapts a store to the loader the assembler expects.
func Loader(s Store) codec.Loader {
	return codec.LoaderFunc(s.Get)
}
