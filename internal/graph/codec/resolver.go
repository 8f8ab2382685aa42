package codec

import (
	"fmt"
	"strings"

	"github.com/goodnatureofminers/btcgraph/pkg/safe"
	"github.com/ipfs/go-cid"
)

var headerPaths = []string{"version", "timestamp", "difficulty", "nonce", "parent", "tx"}

// HeaderPaths lists the fields a bitcoin-block unit exposes.
func HeaderPaths() []string {
	return append([]string(nil), headerPaths...)
}

// Resolved is the result of resolving a path inside a header. When the path ends on or passes a
// link, Link is set and Remainder holds the part still to be resolved against the linked unit.
type Resolved struct {
	Value     any
	Link      cid.Cid
	Remainder string
}

// ResolveHeader resolves path against an encoded header. An empty path resolves to the decoded
// header itself.
func ResolveHeader(data []byte, path string) (Resolved, error) {
	header, err := DecodeHeader(data)
	if err != nil {
		return Resolved{}, err
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return Resolved{Value: header}, nil
	}

	field, remainder, _ := strings.Cut(path, "/")
	switch field {
	case "version":
		return scalar(header.Version, field, remainder)
	case "timestamp":
		ts, err := safe.Uint32(header.Timestamp.Unix())
		if err != nil {
			return Resolved{}, fmt.Errorf("%w: timestamp: %v", ErrMalformedEncoding, err)
		}
		return scalar(ts, field, remainder)
	case "difficulty":
		return scalar(header.Bits, field, remainder)
	case "nonce":
		return scalar(header.Nonce, field, remainder)
	case "parent":
		if !header.Parent.Defined() {
			return Resolved{}, fmt.Errorf("%w: genesis header has no parent", ErrNoSuchPath)
		}
		return Resolved{Value: header.Parent, Link: header.Parent, Remainder: remainder}, nil
	case "tx":
		return Resolved{Value: header.Tx, Link: header.Tx, Remainder: remainder}, nil
	default:
		return Resolved{}, fmt.Errorf("%w: %q", ErrNoSuchPath, field)
	}
}

func scalar(value any, field, remainder string) (Resolved, error) {
	if remainder != "" {
		return Resolved{}, fmt.Errorf("%w: %s is not a link, cannot resolve %q", ErrNoSuchPath, field, remainder)
	}
	return Resolved{Value: value}, nil
}
