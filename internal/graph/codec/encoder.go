package codec

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/ipfs/go-cid"
)

// EncodeStats counts the units produced for one block.
type EncodeStats struct {
	Transactions        int
	Nodes               int
	WitnessTransactions int
	WitnessNodes        int
	Duplicates          int
	Segwit              bool
}

// Units is the number of units emitted, header and witness commitment included.
func (s EncodeStats) Units() int {
	n := 1 + s.Transactions + s.Nodes + s.WitnessTransactions + s.WitnessNodes
	if s.Segwit {
		n++
	}
	return n
}

type encoder struct {
	emit  func(Unit) error
	seen  map[cid.Cid]struct{}
	stats EncodeStats
}

// EncodeBlock splits block into units and passes them to emit in graph order: the header first,
// then the merkle tree without witness data, then, for segwit blocks, the witness merkle tree and
// the witness commitment. Units already emitted for this block are skipped. The returned CID is
// the header's and identifies the whole graph.
func EncodeBlock(block *wire.MsgBlock, emit func(Unit) error) (cid.Cid, EncodeStats, error) {
	if block == nil || len(block.Transactions) == 0 {
		return cid.Undef, EncodeStats{}, fmt.Errorf("%w: block without transactions", ErrInvalidArgument)
	}
	if emit == nil {
		return cid.Undef, EncodeStats{}, fmt.Errorf("%w: nil emit func", ErrInvalidArgument)
	}
	e := &encoder{emit: emit, seen: make(map[cid.Cid]struct{})}

	headerBytes, err := EncodeHeader(&block.Header)
	if err != nil {
		return cid.Undef, EncodeStats{}, err
	}
	header := NewUnit(CodecBlock, headerBytes)
	if err = e.put(header, nil); err != nil {
		return cid.Undef, EncodeStats{}, err
	}

	if err = e.legacyTree(block); err != nil {
		return cid.Undef, EncodeStats{}, err
	}

	if !block.Transactions[0].HasWitness() {
		return header.CID, e.stats, nil
	}
	e.stats.Segwit = true

	root, err := e.witnessTree(block)
	if err != nil {
		return cid.Undef, EncodeStats{}, err
	}
	commitment, err := ComputeWitnessCommitment(block, root)
	if err != nil {
		return cid.Undef, EncodeStats{}, err
	}
	if commitment == nil {
		return cid.Undef, EncodeStats{}, fmt.Errorf("%w: segwit coinbase produced no witness commitment", ErrInternalInvariant)
	}
	if err = e.put(*commitment, nil); err != nil {
		return cid.Undef, EncodeStats{}, err
	}
	return header.CID, e.stats, nil
}

// EncodeBlockUnits collects the output of EncodeBlock.
func EncodeBlockUnits(block *wire.MsgBlock) (cid.Cid, []Unit, error) {
	var units []Unit
	root, _, err := EncodeBlock(block, func(u Unit) error {
		units = append(units, u)
		return nil
	})
	if err != nil {
		return cid.Undef, nil, err
	}
	return root, units, nil
}

func (e *encoder) put(u Unit, counter *int) error {
	if _, ok := e.seen[u.CID]; ok {
		e.stats.Duplicates++
		return nil
	}
	e.seen[u.CID] = struct{}{}
	if counter != nil {
		*counter++
	}
	if err := e.emit(u); err != nil {
		return fmt.Errorf("emit unit %s: %w", u.CID, err)
	}
	return nil
}

func (e *encoder) legacyTree(block *wire.MsgBlock) error {
	encoded, digests, err := txDigests(block.Transactions, EncodeTransactionLegacy)
	if err != nil {
		return err
	}
	tree, err := BuildMerkle(digests)
	if err != nil {
		return err
	}
	if root := tree.Root(); root != block.Header.MerkleRoot {
		return fmt.Errorf("%w: transactions hash to merkle root %s, header commits to %s", ErrIntegrity, root, block.Header.MerkleRoot)
	}
	for i := range encoded {
		if err = e.put(Unit{CID: HashToCID(CodecTx, digests[i]), Data: encoded[i]}, &e.stats.Transactions); err != nil {
			return err
		}
	}
	return e.nodes(tree, &e.stats.Nodes)
}

// witnessTree emits the merkle tree over wtxids, with the coinbase replaced by the zero sentinel,
// and returns its root. The root is nil when the coinbase is the only transaction.
func (e *encoder) witnessTree(block *wire.MsgBlock) (*chainhash.Hash, error) {
	if len(block.Transactions) == 1 {
		return nil, nil
	}
	encoded, digests, err := txDigests(block.Transactions[1:], EncodeTransactionFull)
	if err != nil {
		return nil, err
	}
	leaves := make([]chainhash.Hash, 0, len(digests)+1)
	leaves = append(leaves, chainhash.Hash{})
	leaves = append(leaves, digests...)

	tree, err := BuildMerkle(leaves)
	if err != nil {
		return nil, err
	}
	for i := range encoded {
		if err = e.put(Unit{CID: HashToCID(CodecTx, digests[i]), Data: encoded[i]}, &e.stats.WitnessTransactions); err != nil {
			return nil, err
		}
	}
	if err = e.nodes(tree, &e.stats.WitnessNodes); err != nil {
		return nil, err
	}
	root := tree.Root()
	return &root, nil
}

func (e *encoder) nodes(tree *MerkleTree, counter *int) error {
	for i := range tree.Nodes {
		node := &tree.Nodes[i]
		unit := Unit{CID: HashToCID(CodecTx, node.Digest), Data: EncodeMerkleNode(&node.Left, &node.Right)}
		if err := e.put(unit, counter); err != nil {
			return err
		}
	}
	return nil
}
