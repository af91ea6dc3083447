// Package service implements the market order lifecycle: catalog reads,
// order creation behind the risk gate, payment event intake, and
// fulfillment of paid orders.
package service

import (
	"time"

	"github.com/keyfold/keyfold/internal/platform/id"
	"github.com/keyfold/keyfold/internal/services/market/storage"
	"github.com/keyfold/keyfold/internal/services/market/token"
)

// Service orchestrates the market order lifecycle over injected storage.
type Service struct {
	store           storage.Store
	engine          *Engine
	clock           func() time.Time
	newID           func() (string, error)
	newClientSecret func() (string, error)
	locks           orderLocks
}

// NewService creates a market service backed by the given store.
func NewService(store storage.Store) *Service {
	return &Service{
		store:           store,
		engine:          NewEngine(store),
		clock:           time.Now,
		newID:           id.NewID,
		newClientSecret: token.ClientSecret,
	}
}

func (s *Service) now() time.Time {
	if s.clock != nil {
		return s.clock()
	}
	return time.Now()
}
