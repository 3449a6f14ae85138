package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kirakosyanara/gropos/internal/resilience"
)

// GuardedStore places a circuit breaker between callers and the
// underlying store. Missing products are business outcomes, not
// dependency failures, and never trip the breaker.
type GuardedStore struct {
	Next    Store
	Breaker *resilience.Breaker
}

// Product loads through the breaker, returning resilience.ErrOpen
// without touching the store while it is open.
func (s *GuardedStore) Product(ctx context.Context, id uuid.UUID) (Product, error) {
	if s == nil || s.Next == nil {
		return Product{}, fmt.Errorf("catalog guard not configured")
	}
	if s.Breaker == nil {
		return s.Next.Product(ctx, id)
	}
	if !s.Breaker.Allow() {
		return Product{}, fmt.Errorf("catalog lookup: %w", resilience.ErrOpen)
	}
	p, err := s.Next.Product(ctx, id)
	s.Breaker.Report(err == nil || errors.Is(err, ErrNotFound))
	return p, err
}
