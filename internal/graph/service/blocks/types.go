package blocks

import (
	"context"
	"time"

	"github.com/ipfs/go-cid"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Store interface {
		Get(ctx context.Context, c cid.Cid) ([]byte, error)
		Root(ctx context.Context, height uint64) (cid.Cid, error)
	}
	Metrics interface {
		Observe(operation string, err error, started time.Time)
		ObserveAssemble(err error, loads int, started time.Time)
	}
)
