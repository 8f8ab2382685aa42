package car

import (
	"context"
	"fmt"
	"io"

	"github.com/ipfs/go-cid"
	carv2 "github.com/ipld/go-car/v2"
	"github.com/ipld/go-car/v2/storage"
)

// Writer appends sections to a CARv1 archive. Sections repeating a CID are written once.
type Writer struct {
	car  storage.WritableCar
	seen map[cid.Cid]struct{}
}

// NewWriter writes the archive header naming roots.
func NewWriter(w io.Writer, roots ...cid.Cid) (*Writer, error) {
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}
	for _, r := range roots {
		if !r.Defined() {
			return nil, fmt.Errorf("%w: undefined root", ErrNoRoots)
		}
	}
	wc, err := storage.NewWritable(w, roots, carv2.WriteAsCarV1(true))
	if err != nil {
		return nil, fmt.Errorf("write car header: %w", err)
	}
	return &Writer{car: wc, seen: make(map[cid.Cid]struct{})}, nil
}

func (w *Writer) Put(ctx context.Context, c cid.Cid, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := w.seen[c]; ok {
		return nil
	}
	if err := w.car.Put(ctx, key(c), data); err != nil {
		return fmt.Errorf("write section %s: %w", c, err)
	}
	w.seen[c] = struct{}{}
	return nil
}

// Len returns the number of sections written.
func (w *Writer) Len() int {
	return len(w.seen)
}

// Close finalizes the archive. It does not close the underlying writer.
func (w *Writer) Close() error {
	if err := w.car.Finalize(); err != nil {
		return fmt.Errorf("finalize car: %w", err)
	}
	return nil
}
