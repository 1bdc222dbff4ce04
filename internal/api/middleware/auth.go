package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/api/internal/core/domain"
	"github.com/sweetshop/api/internal/pkg/session"
)

const identityKey = "identity"

// Auth validates the bearer token and injects the caller's identity into the
// context. The role is taken from the token as issued; it is not re-read
// from the user record.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.ErrUnauthenticated
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return domain.ErrInvalidToken
			}

			id, err := session.Verify(jwtSecret, strings.TrimSpace(parts[1]))
			if err != nil {
				return err
			}

			SetIdentity(c, id)
			return next(c)
		}
	}
}

// SetIdentity stores id as the authenticated caller of this request.
func SetIdentity(c echo.Context, id domain.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the identity stored by Auth, if any.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(identityKey).(domain.Identity)
	return id, ok
}
