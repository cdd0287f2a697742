package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	auth "github.com/ledgerkeep/auth"
	apierrors "github.com/ledgerkeep/auth/errors"
)

// SubjectContextKey is the echo context key under which RequireToken stores
// the validated token subject (the client_id the token was minted for).
const SubjectContextKey = "auth.subject"

// RequireToken returns echo middleware for resource servers that guards a
// route with bearer-token validation. Requests without a well-formed, validly
// signed, unexpired token are rejected with 401; on success the token subject
// is placed on the context under SubjectContextKey.
func RequireToken(tokens *auth.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return c.JSON(http.StatusUnauthorized, &apierrors.APIError{Detail: "Missing bearer token"})
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, &apierrors.APIError{Detail: "Invalid or expired token"})
			}

			c.Set(SubjectContextKey, claims.Subject)

			return next(c)
		}
	}
}
