package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/btcgraph/internal/graph/bitcoin"
	"github.com/goodnatureofminers/btcgraph/internal/graph/service/importer"
	"github.com/goodnatureofminers/btcgraph/internal/graph/store"
	"github.com/goodnatureofminers/btcgraph/internal/graph/store/backends"
	"github.com/goodnatureofminers/btcgraph/internal/logging"
	"github.com/goodnatureofminers/btcgraph/internal/metrics"
	"github.com/goodnatureofminers/btcgraph/internal/pkg/btcd/rpcclient"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type config struct {
	Store backends.Config `group:"Store Options"`
	Log   logging.Config  `group:"Logging Options"`

	Network      bitcoin.Network `long:"network" env:"GRAPH_IMPORTER_NETWORK" description:"bitcoin network served by the node" default:"mainnet"`
	RPCURL       string          `long:"rpc-url" env:"GRAPH_IMPORTER_RPC_URL" description:"Bitcoin RPC URL" default:"http://127.0.0.1:8332"`
	RPCUser      string          `long:"rpc-user" env:"GRAPH_IMPORTER_RPC_USER" description:"Bitcoin RPC username"`
	RPCPassword  string          `long:"rpc-password" env:"GRAPH_IMPORTER_RPC_PASSWORD" description:"Bitcoin RPC password"`
	StartHeight  uint64          `long:"start-height" env:"GRAPH_IMPORTER_START_HEIGHT" description:"first height of a one-shot import"`
	EndHeight    *uint64         `long:"end-height" env:"GRAPH_IMPORTER_END_HEIGHT" description:"last height of a one-shot import"`
	Follow       bool            `long:"follow" env:"GRAPH_IMPORTER_FOLLOW" description:"keep importing new blocks as the node tip advances"`
	Workers      int             `long:"workers" env:"GRAPH_IMPORTER_WORKERS" description:"concurrent block fetches" default:"8"`
	BatchSize    uint64          `long:"batch-size" env:"GRAPH_IMPORTER_BATCH_SIZE" description:"heights per import batch" default:"100"`
	PollInterval time.Duration   `long:"poll-interval" env:"GRAPH_IMPORTER_POLL_INTERVAL" description:"tip polling interval in follow mode" default:"10s"`
	MetricsAddr  string          `long:"metrics-addr" env:"GRAPH_IMPORTER_METRICS_ADDR" description:"address for metrics server" default:":2112"`
}

func main() {
	cfg := config{}
	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "failed to parse flags: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, closeLogger, err := logging.New(cfg.Log)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer closeLogger()

	if !cfg.Follow && cfg.EndHeight == nil {
		logger.Fatal("either --follow or --end-height is required")
	}

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("graph importer failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	metrics.StartServer(ctx, cfg.MetricsAddr, logger)

	backend, err := backends.Open(ctx, cfg.Store, logger.Named("store"))
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("failed to close store", zap.Error(err))
		}
	}()

	rpcClient, err := rpcclient.Dial(cfg.RPCURL, cfg.RPCUser, cfg.RPCPassword)
	if err != nil {
		return fmt.Errorf("init rpc client: %w", err)
	}
	defer func() {
		rpcClient.Shutdown()
		rpcClient.WaitForShutdown()
	}()
	source := bitcoin.NewSource(rpcclient.NewObservedClient(rpcClient, metrics.NewRPCClient(string(cfg.Network))))
	if err := source.CheckNetwork(ctx, cfg.Network); err != nil {
		return err
	}

	mode := "range"
	if cfg.Follow {
		mode = "follow"
	}
	svc, err := importer.NewService(
		source,
		store.AsBatchWriter(backend),
		backend,
		metrics.NewImporter(mode, string(cfg.Network)),
		importer.Config{
			WorkerCount:  cfg.Workers,
			BatchSize:    cfg.BatchSize,
			PollInterval: cfg.PollInterval,
		},
		logger.Named("importer"),
	)
	if err != nil {
		return err
	}

	if cfg.EndHeight != nil {
		logger.Info("importing height range",
			zap.Uint64("from", cfg.StartHeight),
			zap.Uint64("to", *cfg.EndHeight),
		)
		if err := svc.ImportRange(ctx, cfg.StartHeight, *cfg.EndHeight); err != nil {
			return err
		}
	}
	if !cfg.Follow {
		return nil
	}
	logger.Info("following node tip", zap.Duration("poll_interval", cfg.PollInterval))
	return svc.Run(ctx)
}
