// Package car reads and writes CARv1 archives of graph units. Framing, the dag-cbor header
// and the section index come from go-car; this package keeps unit-shaped Get/Put access
// keyed by cid.Cid.
package car

import (
	"errors"

	"github.com/ipfs/go-cid"
	carv2 "github.com/ipld/go-car/v2"
)

var (
	ErrNoRoots   = errors.New("car: at least one root is required")
	ErrMalformed = errors.New("car: malformed archive")
	ErrReadOnly  = errors.New("car: archive is read only")
	ErrNotFound  = errors.New("car: cid not in archive")
)

// readOptions make go-car check every section against its CID.
func readOptions() []carv2.Option {
	return []carv2.Option{carv2.WithTrustedCAR(false)}
}

func key(c cid.Cid) string {
	return c.KeyString()
}
