// Package blocks serves units, assembled blocks and header fields from a unit store.
package blocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
	"github.com/ipfs/go-cid"
	"go.uber.org/zap"
)

type Service struct {
	store   Store
	metrics Metrics
	logger  *zap.Logger
}

func NewService(store Store, metrics Metrics, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("blocks store is required")
	}
	if metrics == nil {
		return nil, errors.New("blocks metrics is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, metrics: metrics, logger: logger}, nil
}

// Unit returns the stored bytes of c after checking them against c.
func (s *Service) Unit(ctx context.Context, c cid.Cid) (_ []byte, err error) {
	defer func(started time.Time) {
		s.metrics.Observe("unit", err, started)
	}(time.Now())

	if _, err = codec.CIDToHash(c); err != nil {
		return nil, err
	}
	data, err := s.store.Get(ctx, c)
	if err != nil {
		return nil, err
	}
	if err = codec.VerifyUnit(c, data); err != nil {
		s.logger.Error("stored unit does not match its cid", zap.Stringer("cid", c), zap.Error(err))
		return nil, err
	}
	return data, nil
}

// Assemble rebuilds the block whose header unit is root.
func (s *Service) Assemble(ctx context.Context, root cid.Cid) (block *codec.AssembledBlock, err error) {
	started := time.Now()
	defer func() {
		loads := 0
		if block != nil {
			loads = block.Loads
		}
		s.metrics.ObserveAssemble(err, loads, started)
	}()

	block, err = codec.Assemble(ctx, codec.LoaderFunc(s.store.Get), root, codec.WithLogger(s.logger.Named("assembler")))
	if err != nil {
		if errors.Is(err, codec.ErrIntegrity) {
			s.logger.Error("assembly failed integrity check", zap.Stringer("root", root), zap.Error(err))
		}
		return nil, err
	}
	s.logger.Debug("assembled block",
		zap.Stringer("root", root),
		zap.Int("loads", block.Loads),
		zap.Bool("segwit", block.Segwit),
	)
	return block, nil
}

// AssembleHeight looks up the root recorded for height and assembles it.
func (s *Service) AssembleHeight(ctx context.Context, height uint64) (cid.Cid, *codec.AssembledBlock, error) {
	started := time.Now()
	root, err := s.store.Root(ctx, height)
	s.metrics.Observe("root", err, started)
	if err != nil {
		return cid.Undef, nil, fmt.Errorf("root at height %d: %w", height, err)
	}
	block, err := s.Assemble(ctx, root)
	if err != nil {
		return root, nil, err
	}
	return root, block, nil
}

// ResolveHeader resolves path inside the header unit c.
func (s *Service) ResolveHeader(ctx context.Context, c cid.Cid, path string) (_ codec.Resolved, err error) {
	defer func(started time.Time) {
		s.metrics.Observe("resolve_header", err, started)
	}(time.Now())

	if !c.Defined() || codec.Codec(c) != codec.CodecBlock {
		return codec.Resolved{}, fmt.Errorf("%w: %s is not a block header", codec.ErrInvalidArgument, c)
	}
	data, err := s.store.Get(ctx, c)
	if err != nil {
		return codec.Resolved{}, err
	}
	if err = codec.VerifyUnit(c, data); err != nil {
		return codec.Resolved{}, err
	}
	return codec.ResolveHeader(data, path)
}
