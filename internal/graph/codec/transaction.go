package codec

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/ipfs/go-cid"
)

// Transaction is a decoded bitcoin-tx unit together with the links derived from it.
type Transaction struct {
	Tx *wire.MsgTx
	// InputLinks holds, per input, the CID of the spent transaction or cid.Undef when the input
	// does not reference one (coinbase).
	InputLinks []cid.Cid
	// WitnessCommitment is set on coinbases with an output shaped like a witness commitment. It
	// is advisory only: old coinbases can match the pattern by accident.
	WitnessCommitment cid.Cid
}

// EncodeTransactionLegacy serializes tx without witness data. Its digest is the txid.
func EncodeTransactionLegacy(tx *wire.MsgTx) ([]byte, error) {
	if tx == nil {
		return nil, fmt.Errorf("%w: nil transaction", ErrInvalidArgument)
	}
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSizeStripped())
	if err := tx.SerializeNoWitness(&buf); err != nil {
		return nil, fmt.Errorf("serialize transaction without witness: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeTransactionFull serializes tx including witness data. Its digest is the wtxid.
func EncodeTransactionFull(tx *wire.MsgTx) ([]byte, error) {
	if tx == nil {
		return nil, fmt.Errorf("%w: nil transaction", ErrInvalidArgument)
	}
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serialize transaction: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeTransaction parses a transaction and derives its links.
func DecodeTransaction(data []byte) (*Transaction, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: nil transaction bytes", ErrInvalidArgument)
	}
	r := bytes.NewReader(data)
	msgTx := &wire.MsgTx{}
	if err := msgTx.Deserialize(r); err != nil {
		return nil, fmt.Errorf("%w: decode transaction: %v", ErrMalformedEncoding, err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after transaction", ErrMalformedEncoding, r.Len())
	}
	return newTransaction(msgTx), nil
}

func newTransaction(msgTx *wire.MsgTx) *Transaction {
	tx := &Transaction{
		Tx:         msgTx,
		InputLinks: make([]cid.Cid, len(msgTx.TxIn)),
	}
	for i, in := range msgTx.TxIn {
		prev := in.PreviousOutPoint.Hash
		if isZeroHash(&prev) {
			continue
		}
		tx.InputLinks[i] = HashToCID(CodecTx, prev)
	}
	if digest, ok := WitnessCommitmentDigest(msgTx); ok {
		tx.WitnessCommitment = HashToCID(CodecWitnessCommitment, digest)
	}
	return tx
}

// IsCoinbase reports whether tx has the single null-outpoint input of a coinbase.
func IsCoinbase(tx *wire.MsgTx) bool {
	return tx != nil && blockchain.IsCoinBaseTx(tx)
}

// WitnessCommitmentDigest extracts the commitment digest from a coinbase output script
// (OP_RETURN 0x24 0xaa21a9ed followed by 32 bytes). The highest matching output wins.
func WitnessCommitmentDigest(coinbase *wire.MsgTx) (chainhash.Hash, bool) {
	if !IsCoinbase(coinbase) {
		return chainhash.Hash{}, false
	}
	raw, ok := blockchain.ExtractWitnessCommitment(btcutil.NewTx(coinbase))
	if !ok || len(raw) != chainhash.HashSize {
		return chainhash.Hash{}, false
	}
	var digest chainhash.Hash
	copy(digest[:], raw)
	return digest, true
}

// WitnessCommitmentNonce returns the 32 byte reserved value carried in the coinbase witness.
func WitnessCommitmentNonce(coinbase *wire.MsgTx) ([]byte, bool) {
	if !IsCoinbase(coinbase) {
		return nil, false
	}
	witness := coinbase.TxIn[0].Witness
	if len(witness) != 1 || len(witness[0]) != blockchain.CoinbaseWitnessDataLen {
		return nil, false
	}
	return witness[0], true
}

func txDigests(txs []*wire.MsgTx, encode func(*wire.MsgTx) ([]byte, error)) ([][]byte, []chainhash.Hash, error) {
	encoded := make([][]byte, len(txs))
	digests := make([]chainhash.Hash, len(txs))
	for i, tx := range txs {
		data, err := encode(tx)
		if err != nil {
			return nil, nil, fmt.Errorf("encode transaction %d: %w", i, err)
		}
		encoded[i] = data
		digests[i] = DoubleSHA256(data)
	}
	return encoded, digests, nil
}
