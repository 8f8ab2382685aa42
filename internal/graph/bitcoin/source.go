// Package bitcoin reads raw blocks from a bitcoin node.
package bitcoin

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcgraph/pkg/safe"
)

type Source struct {
	rpc RPCClient
}

func NewSource(rpc RPCClient) *Source {
	return &Source{rpc: rpc}
}

// LatestHeight returns the height of the node's best block.
func (s *Source) LatestHeight(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	count, err := s.rpc.GetBlockCount()
	if err != nil {
		return 0, fmt.Errorf("get block count: %w", err)
	}
	height, err := safe.Uint64(count)
	if err != nil {
		return 0, fmt.Errorf("block count overflow: %w", err)
	}
	return height, nil
}

// FetchBlock returns the block at height on the node's best chain.
func (s *Source) FetchBlock(ctx context.Context, height uint64) (*wire.MsgBlock, error) {
	h, err := safe.Int64(height)
	if err != nil {
		return nil, fmt.Errorf("block height %d exceeds rpc limit: %w", height, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash, err := s.rpc.GetBlockHash(h)
	if err != nil {
		return nil, fmt.Errorf("get block hash at height %d: %w", height, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	block, err := s.rpc.GetBlock(hash)
	if err != nil {
		return nil, fmt.Errorf("get block %s: %w", hash, err)
	}
	if got := block.BlockHash(); !got.IsEqual(hash) {
		return nil, fmt.Errorf("node returned block %s for hash %s", got, hash)
	}
	return block, nil
}
