package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"openmart/internal/model"
	"openmart/internal/service"
)

// SeedHandler handles seed data endpoints.
type SeedHandler struct {
	categoryService service.CategoryService
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(categoryService service.CategoryService) *SeedHandler {
	return &SeedHandler{categoryService: categoryService}
}

// SeedResponse represents the seed response.
type SeedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// SeedCategories godoc
// @Summary Seed default categories
// @Description Inserts the default categories that do not exist yet.
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SeedResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /dashboard/categories/seed [post]
func (h *SeedHandler) SeedCategories(c echo.Context) error {
	count, err := h.categoryService.Seed(c.Request().Context(), model.DefaultCategories())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, SeedResponse{
		Message: "categories seeded successfully",
		Count:   count,
	})
}
