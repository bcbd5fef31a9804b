package main

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gautambamne/ECom-sub000/internal/apperror"
	"github.com/gautambamne/ECom-sub000/internal/middleware"
	"github.com/gautambamne/ECom-sub000/internal/services"
)

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
}

func (r *productRequest) input() services.ProductInput {
	return services.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		PriceCents:  r.PriceCents,
		Stock:       r.Stock,
	}
}

// registerProductRoutes exposes the catalog. Reads are public; writes
// require an authenticated admin.
func registerProductRoutes(g *echo.Group, ps *services.ProductService, authn echo.MiddlewareFunc) {
	products := g.Group("/products")

	products.GET("", func(c echo.Context) error {
		page, _ := strconv.Atoi(c.QueryParam("page"))
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		list, err := ps.List(c.Request().Context(), page, limit)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"products": list})
	})

	products.GET("/:id", func(c echo.Context) error {
		p, err := ps.GetByID(c.Request().Context(), c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"product": p})
	})

	admin := products.Group("")
	admin.Use(authn, middleware.RequireRoles("admin"))

	admin.POST("", func(c echo.Context) error {
		req := new(productRequest)
		if err := c.Bind(req); err != nil {
			return apperror.Validation("Invalid request body", nil)
		}
		p, err := ps.Create(c.Request().Context(), req.input())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, echo.Map{"product": p})
	})

	admin.PUT("/:id", func(c echo.Context) error {
		req := new(productRequest)
		if err := c.Bind(req); err != nil {
			return apperror.Validation("Invalid request body", nil)
		}
		p, err := ps.Update(c.Request().Context(), c.Param("id"), req.input())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"product": p})
	})

	admin.DELETE("/:id", func(c echo.Context) error {
		if err := ps.Delete(c.Request().Context(), c.Param("id")); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted"})
	})
}
