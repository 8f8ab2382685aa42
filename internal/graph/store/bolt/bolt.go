// Package bolt stores graph units in a bbolt file.
package bolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
	"github.com/goodnatureofminers/btcgraph/internal/graph/store"
	"github.com/ipfs/go-cid"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketUnits = []byte("units_by_cid")
	bucketRoots = []byte("roots_by_height")
)

// Store is a bbolt backed store.Backend.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("bolt path is required")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	if err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketUnits, bucketRoots} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Put(ctx context.Context, c cid.Cid, data []byte) error {
	return s.PutUnits(ctx, []codec.Unit{{CID: c, Data: data}})
}

// PutUnits writes all units in a single transaction.
func (s *Store) PutUnits(ctx context.Context, units []codec.Unit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUnits)
		for _, u := range units {
			key := u.CID.Bytes()
			if b.Get(key) != nil {
				continue
			}
			if err := b.Put(key, u.Data); err != nil {
				return fmt.Errorf("put unit %s: %w", u.CID, err)
			}
		}
		return nil
	})
}

func (s *Store) Get(ctx context.Context, c cid.Cid) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketUnits).Get(c.Bytes())
		if v == nil {
			return fmt.Errorf("unit %s: %w", c, store.ErrNotFound)
		}
		// Values are only valid for the life of the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}

func (s *Store) PutRoot(ctx context.Context, height uint64, root cid.Cid) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRoots).Put(heightKey(height), root.Bytes())
	})
}

func (s *Store) Root(ctx context.Context, height uint64) (cid.Cid, error) {
	if err := ctx.Err(); err != nil {
		return cid.Undef, err
	}
	var root cid.Cid
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketRoots).Get(heightKey(height))
		if v == nil {
			return fmt.Errorf("root at height %d: %w", height, store.ErrNotFound)
		}
		var err error
		root, err = cid.Cast(append([]byte(nil), v...))
		if err != nil {
			return fmt.Errorf("decode root at height %d: %w", height, err)
		}
		return nil
	})
	return root, err
}

func (s *Store) LastHeight(ctx context.Context) (uint64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	var (
		height uint64
		ok     bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		k, _ := tx.Bucket(bucketRoots).Cursor().Last()
		if k == nil {
			return nil
		}
		height, ok = binary.BigEndian.Uint64(k), true
		return nil
	})
	return height, ok, err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func heightKey(height uint64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], height)
	return key[:]
}
