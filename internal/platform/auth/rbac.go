package auth

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
)

// Roles understood by the MedicalInfo routes. RoleAdmin passes every check.
const (
	RoleAdmin     = "admin"
	RolePhysician = "physician"
)

// HasAnyRole reports whether have grants one of want. An admin is granted
// everything; an empty want grants nothing.
func HasAnyRole(have, want []string) bool {
	if len(want) == 0 {
		return false
	}
	if slices.Contains(have, RoleAdmin) {
		return true
	}
	return slices.ContainsFunc(want, func(r string) bool {
		return slices.Contains(have, r)
	})
}

// RequireRole rejects requests whose subject holds none of roles with 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	denied := fmt.Sprintf("required role: %s", strings.Join(roles, " or "))
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !HasAnyRole(RolesFromContext(c.Request().Context()), roles) {
				return echo.NewHTTPError(http.StatusForbidden, denied)
			}
			return next(c)
		}
	}
}
