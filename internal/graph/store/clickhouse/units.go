package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
	"github.com/goodnatureofminers/btcgraph/internal/graph/store"
	"github.com/ipfs/go-cid"
)

const (
	insertUnitsQuery = `
INSERT INTO graph_units (
	cid,
	codec,
	data
) VALUES`

	selectUnitQuery = `
SELECT data
FROM graph_units
WHERE cid = ?
LIMIT 1`
)

func (r *Repository) Put(ctx context.Context, c cid.Cid, data []byte) error {
	return r.PutUnits(ctx, []codec.Unit{{CID: c, Data: data}})
}

// PutUnits inserts units in one batch. Duplicate CIDs collapse on merge.
func (r *Repository) PutUnits(ctx context.Context, units []codec.Unit) (err error) {
	defer func(started time.Time) {
		r.metrics.Observe("insert_units", err, started)
	}(time.Now())

	if len(units) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertUnitsQuery)
	if err != nil {
		return fmt.Errorf("prepare units batch: %w", err)
	}

	for _, u := range units {
		if err = batch.Append(u.CID.String(), codec.Codec(u.CID), string(u.Data)); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append unit %s: %w", u.CID, err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert units: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, c cid.Cid) (_ []byte, err error) {
	defer func(started time.Time) {
		r.metrics.Observe("unit", err, started)
	}(time.Now())

	var data string
	err = r.conn.QueryRow(ctx, selectUnitQuery, c.String()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("unit %s: %w", c, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query unit %s: %w", c, err)
	}
	return []byte(data), nil
}
