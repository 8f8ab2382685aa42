package store

import (
	"context"
	"time"

	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
	"github.com/ipfs/go-cid"
)

// Observed decorates a Backend with metrics for every operation.
type Observed struct {
	backend Backend
	metrics Metrics
}

// NewObserved wraps backend.
func NewObserved(backend Backend, metrics Metrics) *Observed {
	return &Observed{backend: backend, metrics: metrics}
}

func (o *Observed) Put(ctx context.Context, c cid.Cid, data []byte) (err error) {
	defer func(started time.Time) {
		o.metrics.Observe("put", err, started)
	}(time.Now())

	return o.backend.Put(ctx, c, data)
}

func (o *Observed) Get(ctx context.Context, c cid.Cid) (_ []byte, err error) {
	defer func(started time.Time) {
		o.metrics.Observe("get", err, started)
	}(time.Now())

	return o.backend.Get(ctx, c)
}

func (o *Observed) PutUnits(ctx context.Context, units []codec.Unit) (err error) {
	defer func(started time.Time) {
		o.metrics.Observe("put_units", err, started)
	}(time.Now())

	return PutUnits(ctx, o.backend, units)
}

func (o *Observed) PutRoot(ctx context.Context, height uint64, root cid.Cid) (err error) {
	defer func(started time.Time) {
		o.metrics.Observe("put_root", err, started)
	}(time.Now())

	return o.backend.PutRoot(ctx, height, root)
}

func (o *Observed) Root(ctx context.Context, height uint64) (_ cid.Cid, err error) {
	defer func(started time.Time) {
		o.metrics.Observe("root", err, started)
	}(time.Now())

	return o.backend.Root(ctx, height)
}

func (o *Observed) LastHeight(ctx context.Context) (_ uint64, _ bool, err error) {
	defer func(started time.Time) {
		o.metrics.Observe("last_height", err, started)
	}(time.Now())

	return o.backend.LastHeight(ctx)
}

func (o *Observed) Close() error {
	return o.backend.Close()
}
