package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sweetshop/api/internal/api/middleware"
	"github.com/sweetshop/api/internal/core/domain"
)

// callerIdentity returns the identity the Auth middleware attached to the
// request. Handlers mounted behind Auth always have one; its absence means
// the route was wired without authentication.
func callerIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}
