package codec

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/ipfs/go-cid"
)

var witnessCommitmentHeader = []byte{txscript.OP_RETURN, 0x24, 0xaa, 0x21, 0xa9, 0xed}

func genesisBlock(t *testing.T) *wire.MsgBlock {
	t.Helper()
	return copyBlock(t, chaincfg.MainNetParams.GenesisBlock)
}

func copyBlock(t *testing.T, block *wire.MsgBlock) *wire.MsgBlock {
	t.Helper()
	var buf bytes.Buffer
	if err := block.Serialize(&buf); err != nil {
		t.Fatalf("serialize block: %v", err)
	}
	clone := &wire.MsgBlock{}
	if err := clone.Deserialize(&buf); err != nil {
		t.Fatalf("deserialize block: %v", err)
	}
	return clone
}

func serializeBlock(t *testing.T, block *wire.MsgBlock) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := block.Serialize(&buf); err != nil {
		t.Fatalf("serialize block: %v", err)
	}
	return buf.Bytes()
}

func hashOf(s string) chainhash.Hash {
	return chainhash.DoubleHashH([]byte(s))
}

func newCoinbase(height int) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: wire.MaxPrevOutIndex},
		SignatureScript:  []byte{0x03, byte(height), byte(height >> 8), byte(height >> 16)},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	tx.AddTxOut(wire.NewTxOut(50_0000_0000, []byte{txscript.OP_TRUE}))
	return tx
}

func newSpend(name string, witness bool) *wire.MsgTx {
	tx := wire.NewMsgTx(2)
	in := wire.NewTxIn(wire.NewOutPoint(ptr(hashOf(name)), 0), nil, nil)
	if witness {
		in.Witness = wire.TxWitness{[]byte("sig-" + name), []byte("key-" + name)}
	}
	tx.AddTxIn(in)
	tx.AddTxOut(wire.NewTxOut(1000, []byte{txscript.OP_TRUE, byte(len(name))}))
	return tx
}

func ptr[T any](v T) *T {
	return &v
}

// newBlock assembles a consistent block around txs. With segwit set the coinbase gets a witness
// nonce and a commitment output over the witness merkle root.
func newBlock(t *testing.T, segwit bool, txs ...*wire.MsgTx) *wire.MsgBlock {
	t.Helper()
	coinbase := newCoinbase(len(txs))
	all := append([]*wire.MsgTx{coinbase}, txs...)

	if segwit {
		nonce := bytes.Repeat([]byte{0x07}, blockchain.CoinbaseWitnessDataLen)
		coinbase.TxIn[0].Witness = wire.TxWitness{nonce}
		root := blockchain.CalcMerkleRoot(wrapTxs(all), true)
		commitment := chainhash.DoubleHashB(append(root[:], nonce...))
		coinbase.AddTxOut(wire.NewTxOut(0, append(append([]byte(nil), witnessCommitmentHeader...), commitment...)))
	}

	block := &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:   0x20000000,
			PrevBlock: hashOf(fmt.Sprintf("parent-%d", len(txs))),
			Timestamp: chaincfg.MainNetParams.GenesisBlock.Header.Timestamp,
			Bits:      0x1d00ffff,
			Nonce:     uint32(len(txs)),
		},
		Transactions: all,
	}
	block.Header.MerkleRoot = blockchain.CalcMerkleRoot(wrapTxs(all), false)
	if segwit {
		if err := blockchain.ValidateWitnessCommitment(btcutil.NewBlock(block)); err != nil {
			t.Fatalf("fixture witness commitment: %v", err)
		}
	}
	return block
}

func wrapTxs(txs []*wire.MsgTx) []*btcutil.Tx {
	wrapped := make([]*btcutil.Tx, len(txs))
	for i, tx := range txs {
		wrapped[i] = btcutil.NewTx(tx)
	}
	return wrapped
}

type mapLoader map[cid.Cid][]byte

func (m mapLoader) Load(_ context.Context, c cid.Cid) ([]byte, error) {
	data, ok := m[c]
	if !ok {
		return nil, fmt.Errorf("unit %s not found", c)
	}
	return data, nil
}

func encodeToLoader(t *testing.T, block *wire.MsgBlock) (cid.Cid, mapLoader) {
	t.Helper()
	root, units, err := EncodeBlockUnits(block)
	if err != nil {
		t.Fatalf("EncodeBlockUnits() error = %v", err)
	}
	loader := make(mapLoader, len(units))
	for _, u := range units {
		loader[u.CID] = u.Data
	}
	return root, loader
}
