package car

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ipfs/go-cid"
	carv2 "github.com/ipld/go-car/v2"
	"github.com/ipld/go-car/v2/storage"
)

// Reader serves the sections of an archive by CID. Opening scans the archive once, checking
// every section, and go-car indexes it for Get.
type Reader struct {
	car   storage.ReadableCar
	roots []cid.Cid
	cids  []cid.Cid
}

func NewReader(r io.ReaderAt) (*Reader, error) {
	br, err := carv2.NewBlockReader(io.NewSectionReader(r, 0, math.MaxInt64), readOptions()...)
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}

	seen := make(map[cid.Cid]struct{})
	var cids []cid.Cid
	for {
		blk, err := br.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: section %d: %v", ErrMalformed, len(cids), err)
		}
		c := blk.Cid()
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		cids = append(cids, c)
	}

	rc, err := storage.OpenReadable(r, readOptions()...)
	if err != nil {
		return nil, fmt.Errorf("%w: index: %v", ErrMalformed, err)
	}
	return &Reader{car: rc, roots: br.Roots, cids: cids}, nil
}

func (r *Reader) Roots() []cid.Cid {
	return append([]cid.Cid(nil), r.roots...)
}

// Len returns the number of distinct sections.
func (r *Reader) Len() int {
	return len(r.cids)
}

// CIDs lists section CIDs in archive order.
func (r *Reader) CIDs() []cid.Cid {
	return append([]cid.Cid(nil), r.cids...)
}

func (r *Reader) Get(ctx context.Context, c cid.Cid) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ok, err := r.car.Has(ctx, key(c))
	if err != nil {
		return nil, fmt.Errorf("lookup section %s: %w", c, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", c, ErrNotFound)
	}
	data, err := r.car.Get(ctx, key(c))
	if err != nil {
		return nil, fmt.Errorf("read section %s: %w", c, err)
	}
	return data, nil
}

func (r *Reader) Put(context.Context, cid.Cid, []byte) error {
	return ErrReadOnly
}
