package codec

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/wire"
	"github.com/ipfs/go-cid"
)

// HeaderSize is the wire size of a block header.
const HeaderSize = wire.MaxBlockHeaderPayload

// Header is a decoded bitcoin-block unit.
type Header struct {
	wire.BlockHeader
	// Parent links to the previous header; cid.Undef for the genesis block.
	Parent cid.Cid
	// Tx links to the root of the transaction merkle tree without witness data.
	Tx cid.Cid
}

// EncodeHeader serializes the 80 byte header.
func EncodeHeader(h *wire.BlockHeader) ([]byte, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: nil header", ErrInvalidArgument)
	}
	var buf bytes.Buffer
	buf.Grow(HeaderSize)
	if err := h.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serialize header: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeHeader parses exactly 80 bytes and derives the parent and tx links.
func DecodeHeader(data []byte) (*Header, error) {
	if len(data) != HeaderSize {
		return nil, fmt.Errorf("%w: header must be %d bytes, got %d", ErrMalformedEncoding, HeaderSize, len(data))
	}
	header := &Header{}
	if err := header.BlockHeader.Deserialize(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: decode header: %v", ErrMalformedEncoding, err)
	}
	if !isZeroHash(&header.PrevBlock) {
		header.Parent = HashToCID(CodecBlock, header.PrevBlock)
	}
	header.Tx = HashToCID(CodecTx, header.MerkleRoot)
	return header, nil
}

// HeaderCID returns the CID of a header, whose digest is the block hash.
func HeaderCID(h *wire.BlockHeader) cid.Cid {
	return HashToCID(CodecBlock, h.BlockHash())
}
