package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/ipfs/go-cid"
	"go.uber.org/zap"
)

// Loader returns the bytes stored under a CID.
type Loader interface {
	Load(ctx context.Context, c cid.Cid) ([]byte, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, c cid.Cid) ([]byte, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, c cid.Cid) ([]byte, error) {
	return f(ctx, c)
}

// AssembledBlock is a block rebuilt from its graph.
type AssembledBlock struct {
	Header *Header
	Block  *wire.MsgBlock
	// Raw is the block serialized with witness data.
	Raw    []byte
	Segwit bool
	// Loads is the number of loader calls the assembly needed.
	Loads int
}

// AssembleOption configures Assemble.
type AssembleOption func(*assembler)

// WithLogger sets the logger used for diagnostics during assembly.
func WithLogger(logger *zap.Logger) AssembleOption {
	return func(a *assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

type assembler struct {
	loader Loader
	logger *zap.Logger
	memo   map[cid.Cid]TreeUnit
	loads  int
}

// commitmentResult is the outcome of following a coinbase witness commitment link. A zero value
// means the block is assembled without witness data.
type commitmentResult struct {
	segwit     bool
	commitment *WitnessCommitment
}

// Assemble rebuilds the block whose header unit is root by loading units through loader. Every
// loaded unit is checked against its CID.
//
// A coinbase output can look like a witness commitment in blocks that predate segwit. When the
// linked commitment cannot be loaded or decoded the block is assembled as non-segwit.
func Assemble(ctx context.Context, loader Loader, root cid.Cid, opts ...AssembleOption) (*AssembledBlock, error) {
	if loader == nil {
		return nil, fmt.Errorf("%w: nil loader", ErrInvalidArgument)
	}
	if !root.Defined() || Codec(root) != CodecBlock {
		return nil, fmt.Errorf("%w: %s is not a bitcoin-block CID", ErrInvalidArgument, root)
	}
	a := &assembler{
		loader: loader,
		logger: zap.NewNop(),
		memo:   make(map[cid.Cid]TreeUnit),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a.assemble(ctx, root)
}

func (a *assembler) assemble(ctx context.Context, root cid.Cid) (*AssembledBlock, error) {
	data, err := a.load(ctx, root)
	if err != nil {
		return nil, err
	}
	header, err := DecodeHeader(data)
	if err != nil {
		return nil, fmt.Errorf("decode header %s: %w", root, err)
	}

	coinbase, err := a.coinbase(ctx, header.Tx)
	if err != nil {
		return nil, err
	}

	result, err := a.resolveCommitment(ctx, coinbase)
	if err != nil {
		return nil, err
	}

	treeRoot := header.Tx
	var txs []*wire.MsgTx
	if result.segwit {
		coinbase.Tx.TxIn[0].Witness = wire.TxWitness{result.commitment.Nonce}
		if result.commitment.WitnessMerkleRoot.Defined() {
			txs = append(txs, coinbase.Tx)
			treeRoot = result.commitment.WitnessMerkleRoot
		}
	}

	txs, err = a.transactions(ctx, treeRoot, txs)
	if err != nil {
		return nil, err
	}
	if err = checkMerkleRoot(txs, &header.MerkleRoot); err != nil {
		return nil, err
	}

	block := &wire.MsgBlock{Header: header.BlockHeader, Transactions: txs}
	var buf bytes.Buffer
	buf.Grow(block.SerializeSize())
	if err = block.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serialize block: %w", err)
	}

	return &AssembledBlock{
		Header: header,
		Block:  block,
		Raw:    buf.Bytes(),
		Segwit: result.segwit,
		Loads:  a.loads,
	}, nil
}

func (a *assembler) load(ctx context.Context, c cid.Cid) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.loads++
	data, err := a.loader.Load(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c, err)
	}
	if err = VerifyUnit(c, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (a *assembler) treeUnit(ctx context.Context, c cid.Cid) (TreeUnit, error) {
	if unit, ok := a.memo[c]; ok {
		return unit, nil
	}
	if Codec(c) != CodecTx {
		return TreeUnit{}, fmt.Errorf("%w: tree link %s is not a bitcoin-tx CID", ErrMalformedEncoding, c)
	}
	data, err := a.load(ctx, c)
	if err != nil {
		return TreeUnit{}, err
	}
	unit, err := DecodeTreeUnit(data)
	if err != nil {
		return TreeUnit{}, fmt.Errorf("decode unit %s: %w", c, err)
	}
	a.memo[c] = unit
	return unit, nil
}

// coinbase follows left children from the merkle root down to the first transaction.
func (a *assembler) coinbase(ctx context.Context, root cid.Cid) (*Transaction, error) {
	c := root
	for {
		unit, err := a.treeUnit(ctx, c)
		if err != nil {
			return nil, err
		}
		if unit.Kind == KindTransaction {
			return unit.Tx, nil
		}
		if !unit.Node.Left.Defined() {
			return nil, fmt.Errorf("%w: merkle node %s without left child in transaction tree", ErrMalformedEncoding, c)
		}
		c = unit.Node.Left
	}
}

func (a *assembler) resolveCommitment(ctx context.Context, coinbase *Transaction) (commitmentResult, error) {
	link := coinbase.WitnessCommitment
	if !link.Defined() || len(coinbase.Tx.TxIn) == 0 {
		return commitmentResult{}, nil
	}

	data, err := a.load(ctx, link)
	var wc *WitnessCommitment
	if err == nil {
		wc, err = DecodeWitnessCommitment(data)
	}
	switch {
	case err == nil:
		return commitmentResult{segwit: true, commitment: wc}, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrIntegrity):
		return commitmentResult{}, err
	default:
		a.logger.Debug("witness commitment not resolvable, assembling without witness data",
			zap.Stringer("cid", link), zap.Error(err))
		return commitmentResult{}, nil
	}
}

// transactions walks the tree under root depth first, left before right, and appends the leaves to
// txs. A missing left child stands for the coinbase of a witness tree; a right child equal to the
// left one is the duplicated last element of an odd layer.
func (a *assembler) transactions(ctx context.Context, root cid.Cid, txs []*wire.MsgTx) ([]*wire.MsgTx, error) {
	stack := []cid.Cid{root}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		unit, err := a.treeUnit(ctx, c)
		if err != nil {
			return nil, err
		}
		switch unit.Kind {
		case KindTransaction:
			txs = append(txs, unit.Tx.Tx)
		case KindMerkleNode:
			node := unit.Node
			if !node.Duplicate() {
				stack = append(stack, node.Right)
			}
			if node.Left.Defined() {
				stack = append(stack, node.Left)
			}
		default:
			return nil, fmt.Errorf("%w: unit %s decoded as %s", ErrInternalInvariant, c, unit.Kind)
		}
	}
	return txs, nil
}

func checkMerkleRoot(txs []*wire.MsgTx, want *chainhash.Hash) error {
	if len(txs) == 0 {
		return fmt.Errorf("%w: assembled block has no transactions", ErrMalformedEncoding)
	}
	txids := make([]chainhash.Hash, len(txs))
	for i, tx := range txs {
		txids[i] = tx.TxHash()
	}
	tree, err := BuildMerkle(txids)
	if err != nil {
		return err
	}
	if got := tree.Root(); got != *want {
		return fmt.Errorf("%w: assembled transactions hash to %s, header commits to %s", ErrIntegrity, got, want)
	}
	return nil
}
