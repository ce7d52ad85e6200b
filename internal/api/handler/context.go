package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxClaims extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: a caller whose token
// carries neither a role nor the admin claim cannot be scoped, so the
// request is rejected with 401 before touching the provider.
func ctxClaims(c echo.Context) (role string, isAdmin bool, err error) {
	role, _ = c.Get("role").(string)
	isAdmin, _ = c.Get("is_admin").(bool)
	if role == "" && !isAdmin {
		return "", false, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return role, isAdmin, nil
}
