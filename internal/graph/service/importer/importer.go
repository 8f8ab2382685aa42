// Package importer fetches blocks from a node, encodes them into graph units and records the
// root of every imported height.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goodnatureofminers/btcgraph/internal/clock"
	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
	"github.com/goodnatureofminers/btcgraph/pkg/batcher"
	"github.com/goodnatureofminers/btcgraph/pkg/workerpool"
	"github.com/ipfs/go-cid"
	"go.uber.org/zap"
)

// Config tunes an importer. Zero values fall back to defaults.
type Config struct {
	WorkerCount  int
	BatchSize    uint64
	PollInterval time.Duration
}

type encodedBlock struct {
	height uint64
	root   cid.Cid
	units  []codec.Unit
}

// Service imports heights in batches. Units of a batch are flushed before any of its roots is
// recorded, so a stored root always has its units.
type Service struct {
	source       Source
	roots        Roots
	metrics      Metrics
	logger       *zap.Logger
	unitBatcher  *batcher.Batcher[codec.Unit]
	workerCount  int
	batchSize    uint64
	pollInterval time.Duration
	backoff      *backoff.ExponentialBackOff
	sleep        func(context.Context, time.Duration) error
}

func NewService(source Source, units UnitWriter, roots Roots, metrics Metrics, cfg Config, logger *zap.Logger) (*Service, error) {
	if source == nil || units == nil || roots == nil {
		return nil, errors.New("importer source, unit writer and roots are required")
	}
	if metrics == nil {
		return nil, errors.New("importer metrics is required")
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaultWorkerCount
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = pollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		source:  source,
		roots:   roots,
		metrics: metrics,
		logger:  logger,
		unitBatcher: batcher.New[codec.Unit](
			logger.Named("unitBatcher"),
			units.PutUnits,
			unitFlushSize,
			unitFlushPeriod,
			unitFlushRPS,
		),
		workerCount:  cfg.WorkerCount,
		batchSize:    cfg.BatchSize,
		pollInterval: cfg.PollInterval,
		backoff:      newBackOff(),
		sleep:        clock.SleepWithContext,
	}, nil
}

// Run follows the node tip until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.run(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d := s.backoff.NextBackOff()
			s.logger.Warn("run iteration failed, backing off", zap.Error(err), zap.Duration("sleep", d))
			if sleepErr := s.sleep(ctx, d); sleepErr != nil {
				return sleepErr
			}
			continue
		}
		s.backoff.Reset()
	}
}

// newBackOff retries a failing iteration forever, starting at backoffMin and capped at backoffMax.
func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = backoffMin
	b.MaxInterval = backoffMax
	b.Multiplier = backoffMultiplier
	b.RandomizationFactor = backoffJitter
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func (s *Service) run(ctx context.Context) error {
	started := time.Now()
	heights, err := s.nextHeights(ctx)
	s.metrics.ObserveFetchTip(err, started)
	if err != nil {
		return err
	}

	if len(heights) == 0 {
		s.logger.Debug("caught up with the node; sleeping", zap.Duration("sleep", s.pollInterval))
		return s.sleep(ctx, s.pollInterval)
	}

	return s.ImportHeights(ctx, heights)
}

// nextHeights returns the heights after the last recorded root, up to the node tip and at
// most one batch.
func (s *Service) nextHeights(ctx context.Context) ([]uint64, error) {
	last, ok, err := s.roots.LastHeight(ctx)
	if err != nil {
		return nil, fmt.Errorf("last imported height: %w", err)
	}
	tip, err := s.source.LatestHeight(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest height: %w", err)
	}

	var next uint64
	if ok {
		next = last + 1
	}
	if next > tip {
		return nil, nil
	}
	end := tip
	if end-next >= s.batchSize {
		end = next + s.batchSize - 1
	}
	return heightRange(next, end), nil
}

// ImportRange imports from..to inclusive and returns.
func (s *Service) ImportRange(ctx context.Context, from, to uint64) error {
	if from > to {
		return fmt.Errorf("invalid height range %d..%d", from, to)
	}
	for start := from; ; start += s.batchSize {
		end := to
		if end-start >= s.batchSize {
			end = start + s.batchSize - 1
		}
		if err := s.ImportHeights(ctx, heightRange(start, end)); err != nil {
			return err
		}
		if end == to {
			return nil
		}
	}
}

// ImportHeights fetches and encodes heights concurrently, writes their units, then records
// their roots in height order.
func (s *Service) ImportHeights(ctx context.Context, heights []uint64) (err error) {
	if len(heights) == 0 {
		return nil
	}

	started := time.Now()
	defer func() {
		s.metrics.ObserveBatch(err, len(heights), started)
	}()

	blocks, err := workerpool.Map(ctx, s.workerCount, heights, s.encodeHeight)
	if err != nil {
		return err
	}

	for _, b := range blocks {
		if err = s.unitBatcher.Add(ctx, b.units...); err != nil {
			return fmt.Errorf("write units of height %d: %w", b.height, err)
		}
	}
	if err = s.unitBatcher.Flush(ctx); err != nil {
		return fmt.Errorf("flush units: %w", err)
	}

	for _, b := range blocks {
		if err = s.roots.PutRoot(ctx, b.height, b.root); err != nil {
			return fmt.Errorf("record root of height %d: %w", b.height, err)
		}
	}

	last := blocks[len(blocks)-1]
	s.metrics.SetLastHeight(last.height)
	s.logger.Info("imported heights",
		zap.Uint64("from", blocks[0].height),
		zap.Uint64("to", last.height),
		zap.Stringer("root", last.root),
	)
	return nil
}

func (s *Service) encodeHeight(ctx context.Context, height uint64) (_ encodedBlock, err error) {
	started := time.Now()
	var units []codec.Unit
	defer func() {
		s.metrics.ObserveHeight(err, len(units), started)
	}()

	block, err := s.source.FetchBlock(ctx, height)
	if err != nil {
		s.logger.Error("fetch block failed", zap.Uint64("height", height), zap.Error(err))
		return encodedBlock{}, fmt.Errorf("fetch block height %d: %w", height, err)
	}

	root, units, err := codec.EncodeBlockUnits(block)
	if err != nil {
		s.logger.Error("encode block failed", zap.Uint64("height", height), zap.Error(err))
		return encodedBlock{}, fmt.Errorf("encode block height %d: %w", height, err)
	}
	return encodedBlock{height: height, root: root, units: units}, nil
}

func heightRange(from, to uint64) []uint64 {
	heights := make([]uint64, 0, to-from+1)
	for h := from; ; h++ {
		heights = append(heights, h)
		if h == to {
			return heights
		}
	}
}
