package ports

import (
	"context"

	"github.com/sweetshop/api/internal/core/domain"
)

// SweetRepository defines persistence operations for sweets. Every method
// reports an unknown or malformed id as domain.ErrSweetNotFound.
type SweetRepository interface {
	Create(ctx context.Context, s *domain.Sweet) (*domain.Sweet, error)
	FindByID(ctx context.Context, id string) (*domain.Sweet, error)
	// Find returns the sweets matching filter in insertion order.
	Find(ctx context.Context, filter domain.SweetFilter) ([]domain.Sweet, error)
	Update(ctx context.Context, id string, patch domain.SweetPatch) (*domain.Sweet, error)
	Delete(ctx context.Context, id string) error

	// DecrementStock subtracts n from the stored quantity in a single
	// conditional write that only matches while quantity >= n. When the
	// condition fails the record is left untouched and
	// domain.ErrInsufficientStock is returned.
	DecrementStock(ctx context.Context, id string, n int) (*domain.Sweet, error)
	// IncrementStock atomically adds n to the stored quantity.
	IncrementStock(ctx context.Context, id string, n int) (*domain.Sweet, error)
}

// MovementRepository persists the stock audit trail.
type MovementRepository interface {
	Insert(ctx context.Context, m *domain.StockMovement) error
	ListBySweet(ctx context.Context, sweetID string) ([]domain.StockMovement, error)
}
