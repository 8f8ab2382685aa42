package codec

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MerkleBranch is a computed non-leaf node of a merkle tree.
type MerkleBranch struct {
	Digest chainhash.Hash
	Left   chainhash.Hash
	Right  chainhash.Hash
}

// MerkleTree holds every layer of a Bitcoin merkle tree, leaves first.
type MerkleTree struct {
	Layers [][]chainhash.Hash
	// Nodes lists the non-leaf nodes in the order they were computed.
	Nodes []MerkleBranch
}

// BuildMerkle computes all layers above leaves. When a layer has odd length its last element is
// paired with itself, as Bitcoin has always done.
func BuildMerkle(leaves []chainhash.Hash) (*MerkleTree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("%w: merkle tree needs at least one leaf", ErrInvalidArgument)
	}

	layer := append([]chainhash.Hash(nil), leaves...)
	tree := &MerkleTree{Layers: [][]chainhash.Hash{layer}}

	for len(layer) > 1 {
		next := make([]chainhash.Hash, 0, (len(layer)+1)/2)
		for i := 0; i < len(layer); i += 2 {
			left := layer[i]
			right := left
			if i+1 < len(layer) {
				right = layer[i+1]
			}
			digest := DoubleSHA256(EncodeMerkleNode(&left, &right))
			next = append(next, digest)
			tree.Nodes = append(tree.Nodes, MerkleBranch{Digest: digest, Left: left, Right: right})
		}
		tree.Layers = append(tree.Layers, next)
		layer = next
	}
	return tree, nil
}

// Root returns the single element of the top layer.
func (t *MerkleTree) Root() chainhash.Hash {
	return t.Layers[len(t.Layers)-1][0]
}
