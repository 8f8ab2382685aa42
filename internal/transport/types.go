package transport

import (
	"context"
	"time"

	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
	"github.com/ipfs/go-cid"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Blocks interface {
		Unit(ctx context.Context, c cid.Cid) ([]byte, error)
		Assemble(ctx context.Context, root cid.Cid) (*codec.AssembledBlock, error)
		AssembleHeight(ctx context.Context, height uint64) (cid.Cid, *codec.AssembledBlock, error)
		ResolveHeader(ctx context.Context, c cid.Cid, path string) (codec.Resolved, error)
	}

	Metrics interface {
		Observe(route string, code int, started time.Time)
	}
)
