package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweetshop/api/internal/core/domain"
)

type memStore struct {
	mu      sync.Mutex
	bySweet map[string][]domain.StockMovement
	failFor string
}

func newMemStore() *memStore {
	return &memStore{bySweet: map[string][]domain.StockMovement{}}
}

func (s *memStore) Insert(_ context.Context, m *domain.StockMovement) error {
	if m.SweetID == s.failFor {
		return errors.New("write failed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySweet[m.SweetID] = append(s.bySweet[m.SweetID], *m)
	return nil
}

func (s *memStore) ListBySweet(_ context.Context, sweetID string) ([]domain.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.StockMovement(nil), s.bySweet[sweetID]...), nil
}

func TestDispatcher_PreservesPerSweetOrder(t *testing.T) {
	store := newMemStore()
	d := NewDispatcher(3, store, zerolog.Nop())
	d.Start()

	sweets := []string{"a", "b", "c", "d", "e"}
	const perSweet = 50
	for i := 0; i < perSweet; i++ {
		for _, id := range sweets {
			require.NoError(t, d.Insert(context.Background(), &domain.StockMovement{
				SweetID:           id,
				Kind:              domain.MovementRestock,
				Quantity:          1,
				ResultingQuantity: i + 1,
			}))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	for _, id := range sweets {
		got, err := d.ListBySweet(context.Background(), id)
		require.NoError(t, err)
		require.Len(t, got, perSweet, "sweet %s", id)
		for i, m := range got {
			assert.Equal(t, i+1, m.ResultingQuantity, fmt.Sprintf("sweet %s position %d", id, i))
		}
	}
}

func TestDispatcher_WriteFailureDoesNotStopWorker(t *testing.T) {
	store := newMemStore()
	store.failFor = "broken"
	d := NewDispatcher(1, store, zerolog.Nop())
	d.Start()

	require.NoError(t, d.Insert(context.Background(), &domain.StockMovement{SweetID: "broken"}))
	require.NoError(t, d.Insert(context.Background(), &domain.StockMovement{SweetID: "ok"}))
	require.NoError(t, d.Stop(context.Background()))

	got, _ := store.ListBySweet(context.Background(), "ok")
	assert.Len(t, got, 1)
}

func TestDispatcher_RejectsAfterStop(t *testing.T) {
	d := NewDispatcher(2, newMemStore(), zerolog.Nop())
	d.Start()
	require.NoError(t, d.Stop(context.Background()))
	require.NoError(t, d.Stop(context.Background()))

	err := d.Insert(context.Background(), &domain.StockMovement{SweetID: "a"})
	assert.ErrorIs(t, err, ErrDispatcherClosed)
}

func TestDispatcher_InsertGivesUpWhenContextEnds(t *testing.T) {
	// Not started: the single buffer fills and the next insert must wait.
	d := NewDispatcher(1, newMemStore(), zerolog.Nop())
	for i := 0; i < channelBuffer; i++ {
		require.NoError(t, d.Insert(context.Background(), &domain.StockMovement{SweetID: "a"}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Insert(ctx, &domain.StockMovement{SweetID: "a"}), context.DeadlineExceeded)
}

func TestShardIndex_IsStable(t *testing.T) {
	d := NewDispatcher(8, newMemStore(), zerolog.Nop())
	first := d.shardIndex("65a1f0c2e4b0a1b2c3d4e5f6")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.shardIndex("65a1f0c2e4b0a1b2c3d4e5f6"))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 8)
}
