package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gautambamne/ECom-sub000/internal/apperror"
	"github.com/gautambamne/ECom-sub000/internal/token"
)

const (
	// AccessTokenCookie is checked before the Authorization header.
	AccessTokenCookie = "access_token"
	// RefreshTokenCookie carries the long-lived credential.
	RefreshTokenCookie = "refresh_token"

	claimsContextKey = "auth_claims"
)

// Authenticate returns an echo middleware that resolves the access
// credential (same-site cookie first, else a bearer header), verifies it,
// and attaches the decoded claims to the request context. Every failure
// reads identically to the caller; the underlying cause is never echoed.
func Authenticate(tokens *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			credential := extractCredential(c)
			if credential == "" {
				return apperror.Unauthorized("Invalid or expired token")
			}

			claims, err := tokens.VerifyAccess(credential)
			if err != nil {
				return apperror.Unauthorized("Invalid or expired token")
			}

			c.Set(claimsContextKey, claims)
			return next(c)
		}
	}
}

func extractCredential(c echo.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	auth := c.Request().Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.Fields(auth)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// GetClaims extracts the verified access claims attached by Authenticate.
func GetClaims(c echo.Context) *token.AccessClaims {
	v := c.Get(claimsContextKey)
	if v == nil {
		return nil
	}
	if claims, ok := v.(*token.AccessClaims); ok {
		return claims
	}
	return nil
}

// RequireRoles gates a route on the claims' role set intersecting the
// required set. Must run after Authenticate.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := GetClaims(c)
			if claims == nil {
				return apperror.Unauthorized("Invalid or expired token")
			}
			for _, want := range roles {
				for _, have := range claims.Roles {
					if have == want {
						return next(c)
					}
				}
			}
			return apperror.Forbidden("Insufficient role")
		}
	}
}
