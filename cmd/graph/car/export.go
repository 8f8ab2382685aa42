package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcgraph/internal/graph/bitcoin"
	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
	"github.com/goodnatureofminers/btcgraph/internal/metrics"
	"github.com/goodnatureofminers/btcgraph/internal/pkg/btcd/rpcclient"
	"github.com/goodnatureofminers/btcgraph/pkg/car"
	"github.com/ipfs/go-cid"
	"go.uber.org/zap"
)

type exportCommand struct {
	app *app

	Network     bitcoin.Network `long:"network" env:"GRAPH_CAR_NETWORK" description:"bitcoin network served by the node" default:"mainnet"`
	RPCURL      string          `long:"rpc-url" env:"GRAPH_CAR_RPC_URL" description:"Bitcoin RPC URL" default:"http://127.0.0.1:8332"`
	RPCUser     string          `long:"rpc-user" env:"GRAPH_CAR_RPC_USER" description:"Bitcoin RPC username"`
	RPCPassword string          `long:"rpc-password" env:"GRAPH_CAR_RPC_PASSWORD" description:"Bitcoin RPC password"`
	Height      uint64          `long:"height" description:"height of the block to export" required:"true"`
	Out         string          `long:"out" short:"o" description:"CAR file to write" required:"true"`
}

type blockFetcher interface {
	FetchBlock(ctx context.Context, height uint64) (*wire.MsgBlock, error)
}

func (c *exportCommand) Execute([]string) error {
	logger, closeLogger, err := c.app.logger()
	if err != nil {
		return err
	}
	defer closeLogger()

	rpcClient, err := rpcclient.Dial(c.RPCURL, c.RPCUser, c.RPCPassword)
	if err != nil {
		return fmt.Errorf("init rpc client: %w", err)
	}
	defer func() {
		rpcClient.Shutdown()
		rpcClient.WaitForShutdown()
	}()
	source := bitcoin.NewSource(rpcclient.NewObservedClient(rpcClient, metrics.NewRPCClient(string(c.Network))))
	if err := source.CheckNetwork(c.app.ctx, c.Network); err != nil {
		return err
	}

	f, err := os.Create(c.Out)
	if err != nil {
		return fmt.Errorf("create %s: %w", c.Out, err)
	}
	root, units, err := exportBlock(c.app.ctx, source, c.Height, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close %s: %w", c.Out, closeErr)
	}
	if err != nil {
		return err
	}
	logger.Info("exported block",
		zap.Uint64("height", c.Height),
		zap.Stringer("root", root),
		zap.Int("units", units),
		zap.String("file", c.Out),
	)
	return nil
}

// exportBlock writes the graph of the block at height to w as a CAR archive rooted at its header.
func exportBlock(ctx context.Context, source blockFetcher, height uint64, w io.Writer) (cid.Cid, int, error) {
	block, err := source.FetchBlock(ctx, height)
	if err != nil {
		return cid.Undef, 0, err
	}
	root, units, err := codec.EncodeBlockUnits(block)
	if err != nil {
		return cid.Undef, 0, fmt.Errorf("encode block %d: %w", height, err)
	}
	cw, err := car.NewWriter(w, root)
	if err != nil {
		return cid.Undef, 0, err
	}
	for _, u := range units {
		if err := cw.Put(ctx, u.CID, u.Data); err != nil {
			return cid.Undef, 0, err
		}
	}
	if err := cw.Close(); err != nil {
		return cid.Undef, 0, err
	}
	return root, cw.Len(), nil
}
