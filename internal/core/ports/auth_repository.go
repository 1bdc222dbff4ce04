package ports

import (
	"context"

	"github.com/sweetshop/api/internal/core/domain"
)

// AuthRepository defines the interface for user persistence.
// Username and email uniqueness is enforced by the store; Create reports
// a collision as domain.ErrUserExists.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// UpdateRole changes the role of the user with the given username.
	UpdateRole(ctx context.Context, username, role string) (*domain.User, error)
}
