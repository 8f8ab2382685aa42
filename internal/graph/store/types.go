package store

import (
	"context"
	"io"
	"time"

	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
	"github.com/ipfs/go-cid"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Store reads and writes units keyed by CID. Units are immutable, so writing a CID twice
	// leaves the stored bytes unchanged.
	Store interface {
		Put(ctx context.Context, c cid.Cid, data []byte) error
		Get(ctx context.Context, c cid.Cid) ([]byte, error)
	}

	// Roots maps block heights to the CID of the block graph imported at that height.
	Roots interface {
		PutRoot(ctx context.Context, height uint64, root cid.Cid) error
		Root(ctx context.Context, height uint64) (cid.Cid, error)
		// LastHeight returns the highest height with a recorded root; ok is false when none is stored.
		LastHeight(ctx context.Context) (height uint64, ok bool, err error)
	}

	// BatchWriter is implemented by stores that write many units more efficiently at once.
	BatchWriter interface {
		PutUnits(ctx context.Context, units []codec.Unit) error
	}

	// Backend is a complete persistence layer.
	Backend interface {
		Store
		Roots
		io.Closer
	}

	// Metrics records the outcome of a store operation.
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)
