package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	EmployeeIDKey contextKey = "employee_id"
	FullNameKey   contextKey = "full_name"
	RoleKey       contextKey = "role"
)

// SessionMiddleware verifies the bearer token and resolves the acting
// employee onto the request context.
func SessionMiddleware(tokens *Tokens) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := tokens.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, EmployeeIDKey, claims.Subject)
			ctx = context.WithValue(ctx, FullNameKey, claims.FullName)
			ctx = context.WithValue(ctx, RoleKey, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func EmployeeIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(EmployeeIDKey).(string)
	return id
}

func FullNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(FullNameKey).(string)
	return name
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(RoleKey).(string)
	return role
}
