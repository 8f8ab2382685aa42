package importer

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
	"github.com/ipfs/go-cid"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Source interface {
		LatestHeight(ctx context.Context) (uint64, error)
		FetchBlock(ctx context.Context, height uint64) (*wire.MsgBlock, error)
	}
	UnitWriter interface {
		PutUnits(ctx context.Context, units []codec.Unit) error
	}
	Roots interface {
		PutRoot(ctx context.Context, height uint64, root cid.Cid) error
		LastHeight(ctx context.Context) (uint64, bool, error)
	}
	Metrics interface {
		ObserveFetchTip(err error, started time.Time)
		ObserveBatch(err error, heights int, started time.Time)
		ObserveHeight(err error, units int, started time.Time)
		SetLastHeight(height uint64)
	}
)
