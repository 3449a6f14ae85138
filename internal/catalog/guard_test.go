package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kirakosyanara/gropos/internal/catalog"
	"github.com/kirakosyanara/gropos/internal/resilience"
)

type failingStore struct {
	err   error
	calls int
}

func (s *failingStore) Product(_ context.Context, _ uuid.UUID) (catalog.Product, error) {
	s.calls++
	if s.err != nil {
		return catalog.Product{}, s.err
	}
	return catalog.Product{}, nil
}

func TestGuardedStoreOpensOnRepeatedFailures(t *testing.T) {
	next := &failingStore{err: errors.New("connection refused")}
	guarded := &catalog.GuardedStore{
		Next:    next,
		Breaker: resilience.NewBreaker("catalog", 3, 0.5, time.Hour, zerolog.Nop()),
	}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := guarded.Product(ctx, uuid.New())
		require.Error(t, err)
	}

	// Breaker is open now: the store must not be touched again.
	_, err := guarded.Product(ctx, uuid.New())
	require.ErrorIs(t, err, resilience.ErrOpen)
	require.Equal(t, 3, next.calls)
}

func TestGuardedStoreNotFoundDoesNotTrip(t *testing.T) {
	next := &failingStore{err: catalog.ErrNotFound}
	guarded := &catalog.GuardedStore{
		Next:    next,
		Breaker: resilience.NewBreaker("catalog", 3, 0.5, time.Hour, zerolog.Nop()),
	}
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := guarded.Product(ctx, uuid.New())
		require.ErrorIs(t, err, catalog.ErrNotFound)
	}
	require.Equal(t, 10, next.calls)
}

func TestGuardedStoreWithoutBreakerPassesThrough(t *testing.T) {
	next := &failingStore{}
	guarded := &catalog.GuardedStore{Next: next}
	_, err := guarded.Product(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Equal(t, 1, next.calls)
}
