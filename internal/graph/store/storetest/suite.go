// Package storetest holds the behaviour every store backend must share.
package storetest

import (
	"context"
	"errors"
	"fmt"

	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
	"github.com/goodnatureofminers/btcgraph/internal/graph/store"
	"github.com/stretchr/testify/suite"
)

// Suite runs the common backend checks. Open must return a fresh, empty backend.
type Suite struct {
	suite.Suite

	Open    func() store.Backend
	backend store.Backend
	ctx     context.Context
}

func (s *Suite) SetupTest() {
	s.ctx = context.Background()
	s.backend = s.Open()
}

func (s *Suite) TearDownTest() {
	if s.backend != nil {
		s.Require().NoError(s.backend.Close())
	}
}

func (s *Suite) TestPutGet() {
	unit := codec.NewUnit(codec.CodecTx, []byte("transaction"))

	s.Require().NoError(s.backend.Put(s.ctx, unit.CID, unit.Data))
	s.Require().NoError(s.backend.Put(s.ctx, unit.CID, unit.Data))

	got, err := s.backend.Get(s.ctx, unit.CID)
	s.Require().NoError(err)
	s.Equal(unit.Data, got)
}

func (s *Suite) TestGetMissing() {
	unit := codec.NewUnit(codec.CodecTx, []byte("never stored"))

	_, err := s.backend.Get(s.ctx, unit.CID)
	s.True(errors.Is(err, store.ErrNotFound), "want ErrNotFound, got %v", err)
}

func (s *Suite) TestPutUnits() {
	units := make([]codec.Unit, 0, 20)
	for i := 0; i < 20; i++ {
		units = append(units, codec.NewUnit(codec.CodecTx, []byte(fmt.Sprintf("unit-%d", i))))
	}
	s.Require().NoError(store.PutUnits(s.ctx, s.backend, units))

	for _, u := range units {
		got, err := s.backend.Get(s.ctx, u.CID)
		s.Require().NoError(err)
		s.Equal(u.Data, got)
	}
}

func (s *Suite) TestRoots() {
	_, ok, err := s.backend.LastHeight(s.ctx)
	s.Require().NoError(err)
	s.False(ok)

	_, err = s.backend.Root(s.ctx, 1)
	s.True(errors.Is(err, store.ErrNotFound), "want ErrNotFound, got %v", err)

	for _, height := range []uint64{3, 1, 300} {
		root := codec.NewUnit(codec.CodecBlock, []byte(fmt.Sprintf("header-%d", height))).CID
		s.Require().NoError(s.backend.PutRoot(s.ctx, height, root))

		got, err := s.backend.Root(s.ctx, height)
		s.Require().NoError(err)
		s.True(root.Equals(got), "root at %d = %s, want %s", height, got, root)
	}

	last, ok, err := s.backend.LastHeight(s.ctx)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(uint64(300), last)
}

func (s *Suite) TestAssembleFromStore() {
	genesis := codec.NewUnit(codec.CodecTx, []byte("coinbase"))
	s.Require().NoError(s.backend.Put(s.ctx, genesis.CID, genesis.Data))

	data, err := store.Loader(s.backend).Load(s.ctx, genesis.CID)
	s.Require().NoError(err)
	s.Require().NoError(codec.VerifyUnit(genesis.CID, data))
}
