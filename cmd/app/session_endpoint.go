package main

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gautambamne/ECom-sub000/internal/apperror"
	"github.com/gautambamne/ECom-sub000/internal/middleware"
	"github.com/gautambamne/ECom-sub000/internal/services"
)

// registerSessionRoutes exposes the device-login registry. All routes
// require a valid access token; the fixed "all-except-current" route is
// registered before the ":id" route so it is not captured as a parameter.
func registerSessionRoutes(g *echo.Group, ss *services.SessionService, authn echo.MiddlewareFunc) {
	sessions := g.Group("/session")
	sessions.Use(authn)

	sessions.GET("", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		if claims == nil {
			return apperror.Unauthorized("Invalid or expired token")
		}
		list, err := ss.List(c.Request().Context(), claims.UserID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"sessions": list})
	})

	sessions.DELETE("/all-except-current", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		if claims == nil {
			return apperror.Unauthorized("Invalid or expired token")
		}
		if err := ss.RevokeAllExcept(c.Request().Context(), claims.UserID, refreshCookieValue(c)); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Other sessions revoked"})
	})

	sessions.DELETE("/:id", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		if claims == nil {
			return apperror.Unauthorized("Invalid or expired token")
		}
		if err := ss.Revoke(c.Request().Context(), claims.UserID, c.Param("id")); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Session revoked"})
	})
}
