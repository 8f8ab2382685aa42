package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
	"github.com/goodnatureofminers/btcgraph/internal/graph/store"
	"github.com/goodnatureofminers/btcgraph/internal/graph/store/backends"
	"github.com/goodnatureofminers/btcgraph/pkg/car"
	"github.com/goodnatureofminers/btcgraph/pkg/workerpool"
	"github.com/ipfs/go-cid"
	"go.uber.org/zap"
)

const (
	importBatchSize = 1000
	defaultWorkers  = 4
)

type importCommand struct {
	app *app

	Store   backends.Config `group:"Store Options"`
	In      string          `long:"in" short:"i" description:"CAR file to read" required:"true"`
	Height  *uint64         `long:"height" description:"record the archive root as the block at this height"`
	Workers int             `long:"workers" description:"goroutines verifying units" default:"4"`
}

func (c *importCommand) Execute([]string) error {
	logger, closeLogger, err := c.app.logger()
	if err != nil {
		return err
	}
	defer closeLogger()

	backend, err := backends.Open(c.app.ctx, c.Store, logger.Named("store"))
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("failed to close store", zap.Error(err))
		}
	}()

	f, err := os.Open(c.In)
	if err != nil {
		return fmt.Errorf("open %s: %w", c.In, err)
	}
	defer f.Close()

	root, n, err := importArchive(c.app.ctx, f, backend, c.Height, c.Workers)
	if err != nil {
		return err
	}
	logger.Info("imported archive", zap.Stringer("root", root), zap.Int("units", n), zap.String("file", c.In))
	return nil
}

// importArchive verifies and copies every unit of the archive into backend, verifying each
// batch with workers goroutines. When height is set the archive root is assembled first and
// recorded as that height's root.
func importArchive(ctx context.Context, r io.ReaderAt, backend store.Backend, height *uint64, workers int) (cid.Cid, int, error) {
	if workers < 1 {
		workers = defaultWorkers
	}
	reader, err := car.NewReader(r)
	if err != nil {
		return cid.Undef, 0, err
	}
	roots := reader.Roots()
	if len(roots) != 1 {
		return cid.Undef, 0, fmt.Errorf("archive has %d roots, want 1", len(roots))
	}
	root := roots[0]
	if height != nil {
		if _, err := codec.Assemble(ctx, codec.LoaderFunc(reader.Get), root); err != nil {
			return cid.Undef, 0, fmt.Errorf("assemble archive root: %w", err)
		}
	}

	writer := store.AsBatchWriter(backend)
	flush := func(batch []codec.Unit) error {
		err := workerpool.Process(ctx, workers, batch, func(_ context.Context, u codec.Unit) error {
			if err := codec.VerifyUnit(u.CID, u.Data); err != nil {
				return fmt.Errorf("unit %s: %w", u.CID, err)
			}
			return nil
		}, nil)
		if err != nil {
			return err
		}
		return writer.PutUnits(ctx, batch)
	}

	batch := make([]codec.Unit, 0, importBatchSize)
	for _, c := range reader.CIDs() {
		data, err := reader.Get(ctx, c)
		if err != nil {
			return cid.Undef, 0, err
		}
		batch = append(batch, codec.Unit{CID: c, Data: data})
		if len(batch) == importBatchSize {
			if err := flush(batch); err != nil {
				return cid.Undef, 0, err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := flush(batch); err != nil {
			return cid.Undef, 0, err
		}
	}
	if height != nil {
		if err := backend.PutRoot(ctx, *height, root); err != nil {
			return cid.Undef, 0, fmt.Errorf("record root: %w", err)
		}
	}
	return root, reader.Len(), nil
}
