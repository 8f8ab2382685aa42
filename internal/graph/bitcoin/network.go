package bitcoin

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

// Network names a bitcoin chain.
type Network string

var (
	Mainnet  Network = "mainnet"
	Testnet3 Network = "testnet3"
	Regtest  Network = "regtest"
	Signet   Network = "signet"
	Simnet   Network = "simnet"
)

// Params returns the chain parameters of n.
func (n Network) Params() (*chaincfg.Params, error) {
	switch n {
	case Mainnet:
		return &chaincfg.MainNetParams, nil
	case Testnet3:
		return &chaincfg.TestNet3Params, nil
	case Regtest:
		return &chaincfg.RegressionNetParams, nil
	case Signet:
		return &chaincfg.SigNetParams, nil
	case Simnet:
		return &chaincfg.SimNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network %q", string(n))
	}
}

// CheckNetwork fails when the node's genesis block is not the genesis block of network.
func (s *Source) CheckNetwork(ctx context.Context, network Network) error {
	params, err := network.Params()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	hash, err := s.rpc.GetBlockHash(0)
	if err != nil {
		return fmt.Errorf("get genesis hash: %w", err)
	}
	if !hash.IsEqual(params.GenesisHash) {
		return fmt.Errorf("node genesis %s does not belong to %s (want %s)", hash, network, params.GenesisHash)
	}
	return nil
}
