package main

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gautambamne/ECom-sub000/internal/apperror"
	"github.com/gautambamne/ECom-sub000/internal/middleware"
	"github.com/gautambamne/ECom-sub000/internal/services"
)

type updateProfileRequest struct {
	Name string `json:"name"`
}

// registerUserRoutes exposes the authenticated user's own profile.
func registerUserRoutes(g *echo.Group, us *services.UserService, authn echo.MiddlewareFunc) {
	users := g.Group("/users")
	users.Use(authn)

	// GET /api/users/me reads the durable record, not the token claims,
	// so it reflects profile edits made after the token was signed.
	users.GET("/me", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		if claims == nil {
			return apperror.Unauthorized("Invalid or expired token")
		}
		user, err := us.GetByID(c.Request().Context(), claims.UserID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"user": user.Sanitized()})
	})

	users.PATCH("/me", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		if claims == nil {
			return apperror.Unauthorized("Invalid or expired token")
		}
		req := new(updateProfileRequest)
		if err := c.Bind(req); err != nil {
			return apperror.Validation("Invalid request body", nil)
		}
		user, err := us.UpdateProfile(c.Request().Context(), claims.UserID, req.Name)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"user": user.Sanitized()})
	})
}
