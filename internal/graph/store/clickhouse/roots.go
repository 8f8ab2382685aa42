package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/btcgraph/internal/graph/store"
	"github.com/ipfs/go-cid"
)

const (
	insertRootQuery = `
INSERT INTO graph_roots (
	height,
	cid,
	imported_at
) VALUES`

	selectRootQuery = `
SELECT cid
FROM graph_roots FINAL
WHERE height = ?
LIMIT 1`

	lastHeightQuery = `
SELECT count() AS roots, coalesce(max(height), toUInt64(0)) AS max_height
FROM graph_roots`
)

func (r *Repository) PutRoot(ctx context.Context, height uint64, root cid.Cid) (err error) {
	defer func(started time.Time) {
		r.metrics.Observe("insert_root", err, started)
	}(time.Now())

	batch, err := r.conn.PrepareBatch(ctx, insertRootQuery)
	if err != nil {
		return fmt.Errorf("prepare roots batch: %w", err)
	}
	if err = batch.Append(height, root.String(), time.Now().UTC()); err != nil {
		_ = batch.Abort()
		return fmt.Errorf("append root: %w", err)
	}
	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert root: %w", err)
	}
	return nil
}

func (r *Repository) Root(ctx context.Context, height uint64) (_ cid.Cid, err error) {
	defer func(started time.Time) {
		r.metrics.Observe("root", err, started)
	}(time.Now())

	var raw string
	err = r.conn.QueryRow(ctx, selectRootQuery, height).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return cid.Undef, fmt.Errorf("root at height %d: %w", height, store.ErrNotFound)
	}
	if err != nil {
		return cid.Undef, fmt.Errorf("query root at height %d: %w", height, err)
	}
	root, err := cid.Decode(raw)
	if err != nil {
		return cid.Undef, fmt.Errorf("decode root at height %d: %w", height, err)
	}
	return root, nil
}

func (r *Repository) LastHeight(ctx context.Context) (_ uint64, _ bool, err error) {
	defer func(started time.Time) {
		r.metrics.Observe("last_height", err, started)
	}(time.Now())

	var count, height uint64
	if err = r.conn.QueryRow(ctx, lastHeightQuery).Scan(&count, &height); err != nil {
		return 0, false, fmt.Errorf("query last height: %w", err)
	}
	return height, count > 0, nil
}
