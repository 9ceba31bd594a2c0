package auth

import (
	"github.com/labstack/echo/v4"

	"signage/internal/model"
)

const identityContextKey = "identity"

// Identity is the authenticated caller resolved at the API boundary.
type Identity struct {
	UserID   uint
	Username string
	Role     model.Role
	Tenant   string
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// SetIdentity stores id on the request context.
func SetIdentity(c echo.Context, id Identity) {
	c.Set(identityContextKey, id)
}

// IdentityFrom returns the identity stored on the request context, if any.
func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityContextKey).(Identity)
	return id, ok
}

const claimsContextKey = "claims"

// SetClaims stores the validated access token claims on the request context.
func SetClaims(c echo.Context, claims *Claims) {
	c.Set(claimsContextKey, claims)
}

// ClaimsFrom returns the access token claims of the request, if any.
func ClaimsFrom(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}
