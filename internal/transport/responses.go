package transport

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
	"github.com/ipfs/go-cid"
)

type blockResponse struct {
	Height       *uint64         `json:"height,omitempty"`
	CID          string          `json:"cid"`
	Hash         string          `json:"hash"`
	Header       *headerResponse `json:"header"`
	Segwit       bool            `json:"segwit"`
	Transactions int             `json:"transactions"`
	Size         int             `json:"size"`
	StrippedSize int             `json:"stripped_size"`
	Weight       int64           `json:"weight"`
	Hex          string          `json:"hex"`
}

func newBlockResponse(root cid.Cid, block *codec.AssembledBlock, height *uint64) blockResponse {
	return blockResponse{
		Height:       height,
		CID:          root.String(),
		Hash:         block.Block.BlockHash().String(),
		Header:       newHeaderResponse(block.Header),
		Segwit:       block.Segwit,
		Transactions: len(block.Block.Transactions),
		Size:         len(block.Raw),
		StrippedSize: block.Block.SerializeSizeStripped(),
		Weight:       blockchain.GetBlockWeight(btcutil.NewBlock(block.Block)),
		Hex:          hex.EncodeToString(block.Raw),
	}
}

type headerResponse struct {
	Hash       string `json:"hash"`
	Version    int32  `json:"version"`
	Timestamp  int64  `json:"timestamp"`
	Difficulty uint32 `json:"difficulty"`
	Nonce      uint32 `json:"nonce"`
	Parent     string `json:"parent,omitempty"`
	Tx         string `json:"tx"`
}

func newHeaderResponse(h *codec.Header) *headerResponse {
	if h == nil {
		return nil
	}
	return &headerResponse{
		Hash:       h.BlockHash().String(),
		Version:    h.Version,
		Timestamp:  h.Timestamp.Unix(),
		Difficulty: h.Bits,
		Nonce:      h.Nonce,
		Parent:     cidString(h.Parent),
		Tx:         cidString(h.Tx),
	}
}

type resolvedResponse struct {
	Value     any    `json:"value"`
	Link      string `json:"link,omitempty"`
	Remainder string `json:"remainder,omitempty"`
}

func newResolvedResponse(r codec.Resolved) resolvedResponse {
	resp := resolvedResponse{Value: r.Value, Link: cidString(r.Link), Remainder: r.Remainder}
	switch v := r.Value.(type) {
	case *codec.Header:
		resp.Value = newHeaderResponse(v)
	case cid.Cid:
		resp.Value = cidString(v)
	}
	return resp
}

func cidString(c cid.Cid) string {
	if !c.Defined() {
		return ""
	}
	return c.String()
}
