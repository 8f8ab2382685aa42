// Package leveldb stores graph units in a LevelDB database.
package leveldb

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
	"github.com/goodnatureofminers/btcgraph/internal/graph/store"
	"github.com/ipfs/go-cid"
	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"
)

var (
	unitPrefix = []byte("u/")
	rootPrefix = []byte("r/")
)

// Store is a LevelDB backed store.Backend.
type Store struct {
	db *leveldb.DB
}

// Open opens the database at path, creating it if needed. A corrupted database is recovered.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("leveldb path is required")
	}
	db, err := leveldb.OpenFile(path, nil)
	var corrupted *ldberrors.ErrCorrupted
	if errors.As(err, &corrupted) {
		logger.Warn("leveldb corruption detected, recovering", zap.String("path", path), zap.Error(err))
		db, err = leveldb.RecoverFile(path, nil)
		if err == nil {
			logger.Warn("leveldb recovered", zap.String("path", path))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Put(ctx context.Context, c cid.Cid, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Put(unitKey(c), data, nil)
}

// PutUnits writes all units in one batch.
func (s *Store) PutUnits(ctx context.Context, units []codec.Unit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	for _, u := range units {
		batch.Put(unitKey(u.CID), u.Data)
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("write %d units: %w", len(units), err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, c cid.Cid) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.db.Get(unitKey(c), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("unit %s: %w", c, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get unit %s: %w", c, err)
	}
	return data, nil
}

func (s *Store) PutRoot(ctx context.Context, height uint64, root cid.Cid) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Put(rootKey(height), root.Bytes(), nil)
}

func (s *Store) Root(ctx context.Context, height uint64) (cid.Cid, error) {
	if err := ctx.Err(); err != nil {
		return cid.Undef, err
	}
	data, err := s.db.Get(rootKey(height), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return cid.Undef, fmt.Errorf("root at height %d: %w", height, store.ErrNotFound)
	}
	if err != nil {
		return cid.Undef, fmt.Errorf("get root at height %d: %w", height, err)
	}
	root, err := cid.Cast(data)
	if err != nil {
		return cid.Undef, fmt.Errorf("decode root at height %d: %w", height, err)
	}
	return root, nil
}

func (s *Store) LastHeight(ctx context.Context) (uint64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	it := s.db.NewIterator(util.BytesPrefix(rootPrefix), nil)
	defer it.Release()

	if !it.Last() {
		return 0, false, it.Error()
	}
	key := it.Key()
	if len(key) != len(rootPrefix)+8 {
		return 0, false, fmt.Errorf("malformed root key %x", key)
	}
	return binary.BigEndian.Uint64(key[len(rootPrefix):]), true, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func unitKey(c cid.Cid) []byte {
	return append(append([]byte(nil), unitPrefix...), c.Bytes()...)
}

func rootKey(height uint64) []byte {
	key := make([]byte, len(rootPrefix)+8)
	copy(key, rootPrefix)
	binary.BigEndian.PutUint64(key[len(rootPrefix):], height)
	return key
}
