package ports

import (
	"context"

	"github.com/sweetshop/api/internal/core/domain"
)

// CreateSweetInput carries all data needed to create a new sweet.
// Quantity defaults to 0 when nil.
type CreateSweetInput struct {
	Name        string
	Category    string
	Price       float64
	Quantity    *int
	Description string
}

// StockChangeInput identifies a purchase or restock request.
type StockChangeInput struct {
	SweetID  string
	Quantity int
	// ActorID is the user id taken from the session token, recorded in the audit trail.
	ActorID string
}

// SweetService defines use-case operations for the inventory.
type SweetService interface {
	List(ctx context.Context) ([]domain.Sweet, error)
	Search(ctx context.Context, filter domain.SweetFilter) ([]domain.Sweet, error)
	Get(ctx context.Context, id string) (*domain.Sweet, error)
	Create(ctx context.Context, in CreateSweetInput) (*domain.Sweet, error)
	Update(ctx context.Context, id string, patch domain.SweetPatch) (*domain.Sweet, error)
	Delete(ctx context.Context, id string) error
	Purchase(ctx context.Context, in StockChangeInput) (*domain.Sweet, error)
	Restock(ctx context.Context, in StockChangeInput) (*domain.Sweet, error)
	Movements(ctx context.Context, sweetID string) ([]domain.StockMovement, error)
}
