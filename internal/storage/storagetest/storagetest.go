// Package storagetest holds the contract checks every storage.Storage
// backend must pass.
package storagetest

import (
	"context"
	"testing"

	"github.com/SigNoz/storefront-go-app/internal/storage"
	"github.com/stretchr/testify/suite"
)

// Suite checks a backend against the storage.Storage contract. NewStorage
// is called before every test and must return an empty backend.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage
	storage    storage.Storage
}

// Run runs the contract suite against backends built by newStorage
func Run(t *testing.T, newStorage func() storage.Storage) {
	suite.Run(t, &Suite{NewStorage: newStorage})
}

func (s *Suite) SetupTest() {
	s.storage = s.NewStorage()
}

func (s *Suite) TestGetMissingKey() {
	_, err := s.storage.Get(context.Background(), "missing")
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *Suite) TestSetGetRemove() {
	ctx := context.Background()
	s.Require().NoError(s.storage.Set(ctx, "mydrugs_cart", `[{"id":1}]`))

	value, err := s.storage.Get(ctx, "mydrugs_cart")
	s.Require().NoError(err)
	s.Equal(`[{"id":1}]`, value)

	s.Require().NoError(s.storage.Set(ctx, "mydrugs_cart", `[]`))
	value, err = s.storage.Get(ctx, "mydrugs_cart")
	s.Require().NoError(err)
	s.Equal(`[]`, value)

	s.Require().NoError(s.storage.Remove(ctx, "mydrugs_cart"))
	_, err = s.storage.Get(ctx, "mydrugs_cart")
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *Suite) TestKeysAreIndependent() {
	ctx := context.Background()
	s.Require().NoError(s.storage.Set(ctx, "mydrugs_user", `{"id":1}`))
	s.Require().NoError(s.storage.Set(ctx, "mydrugs_orders", `[]`))
	s.Require().NoError(s.storage.Remove(ctx, "mydrugs_user"))

	value, err := s.storage.Get(ctx, "mydrugs_orders")
	s.Require().NoError(err)
	s.Equal(`[]`, value)
}

func (s *Suite) TestRemoveMissingKey() {
	s.NoError(s.storage.Remove(context.Background(), "missing"))
}
