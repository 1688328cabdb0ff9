package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"TradeGate/internal/services/auth"
	xhttp "TradeGate/pkg/http"
)

// Context keys set by AuthRequired.
const (
	ContextUserID = "userID"
	ContextEmail  = "userEmail"
)

// AuthRequired validates the Bearer token and stores the authenticated
// identity in the echo context.
func AuthRequired(tokens *auth.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return xhttp.UnauthorizedResponse(c, "missing bearer token")
			}
			tokenStr := strings.TrimPrefix(header, "Bearer ")

			claims, err := tokens.ParseToken(tokenStr)
			if err != nil {
				return xhttp.UnauthorizedResponse(c, "invalid token")
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextEmail, claims.Email)
			return next(c)
		}
	}
}

// UserIDFrom extracts the authenticated user id set by AuthRequired.
func UserIDFrom(c echo.Context) string {
	id, _ := c.Get(ContextUserID).(string)
	return id
}
