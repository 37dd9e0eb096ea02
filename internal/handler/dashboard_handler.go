package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"openmart/internal/auth"
	"openmart/internal/service"
)

// DashboardHandler serves the user and staff dashboards.
type DashboardHandler struct {
	dashboard service.DashboardService
	listings  service.ListingService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboard service.DashboardService, listings service.ListingService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, listings: listings}
}

// User godoc
// @Summary Personal dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.UserDashboard
// @Failure 401 {object} errors.ErrorResponse
// @Router /dashboard [get]
func (h *DashboardHandler) User(c echo.Context) error {
	d, err := h.dashboard.User(c.Request().Context(), auth.CurrentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Admin godoc
// @Summary Marketplace statistics
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.AdminDashboard
// @Failure 403 {object} errors.ErrorResponse
// @Router /dashboard/admin [get]
func (h *DashboardHandler) Admin(c echo.Context) error {
	d, err := h.dashboard.Admin(c.Request().Context(), auth.CurrentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// ManageUsers godoc
// @Summary Search users
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param search query string false "Username, email or name"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} service.UserPage
// @Failure 403 {object} errors.ErrorResponse
// @Router /dashboard/manage-users [get]
func (h *DashboardHandler) ManageUsers(c echo.Context) error {
	page, err := h.dashboard.ManageUsers(c.Request().Context(), auth.CurrentUser(c), c.QueryParam("search"), pageParams(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// ModerateListings godoc
// @Summary Listings by moderation status
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param status query string false "active, sold, inactive or pending"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} service.ListingPage
// @Failure 403 {object} errors.ErrorResponse
// @Router /dashboard/moderate-listings [get]
func (h *DashboardHandler) ModerateListings(c echo.Context) error {
	page, err := h.dashboard.ModerateListings(c.Request().Context(), auth.CurrentUser(c), c.QueryParam("status"), pageParams(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// ApproveBoost godoc
// @Summary Approve a boost
// @Description Boost runs for seven days from approval; approving again restarts the window.
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param listing_id path string true "Listing ID"
// @Success 200 {object} model.Listing
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /dashboard/approve-boost/{listing_id} [post]
func (h *DashboardHandler) ApproveBoost(c echo.Context) error {
	id, err := uuidParam(c, "listing_id")
	if err != nil {
		return err
	}
	listing, err := h.listings.ApproveBoost(c.Request().Context(), auth.CurrentUser(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, listing)
}
