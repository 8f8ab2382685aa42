package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
	"github.com/goodnatureofminers/btcgraph/pkg/car"
	"go.uber.org/zap"
)

type assembleCommand struct {
	app *app

	In  string `long:"in" short:"i" description:"CAR file to read" required:"true"`
	Out string `long:"out" short:"o" description:"write the raw block here instead of printing hex"`
}

func (c *assembleCommand) Execute([]string) error {
	logger, closeLogger, err := c.app.logger()
	if err != nil {
		return err
	}
	defer closeLogger()

	f, err := os.Open(c.In)
	if err != nil {
		return fmt.Errorf("open %s: %w", c.In, err)
	}
	defer f.Close()

	block, err := assembleArchive(c.app.ctx, f, logger)
	if err != nil {
		return err
	}
	logger.Info("assembled block",
		zap.Stringer("hash", block.Block.BlockHash()),
		zap.Int("transactions", len(block.Block.Transactions)),
		zap.Bool("segwit", block.Segwit),
		zap.Int("loads", block.Loads),
	)
	if c.Out == "" {
		_, err := fmt.Fprintln(os.Stdout, hex.EncodeToString(block.Raw))
		return err
	}
	if err := os.WriteFile(c.Out, block.Raw, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", c.Out, err)
	}
	return nil
}

// assembleArchive rebuilds the block rooted in the CAR archive r.
func assembleArchive(ctx context.Context, r io.ReaderAt, logger *zap.Logger) (*codec.AssembledBlock, error) {
	reader, err := car.NewReader(r)
	if err != nil {
		return nil, err
	}
	roots := reader.Roots()
	if len(roots) != 1 {
		return nil, fmt.Errorf("archive has %d roots, want 1", len(roots))
	}
	return codec.Assemble(ctx, codec.LoaderFunc(reader.Get), roots[0], codec.WithLogger(logger))
}
