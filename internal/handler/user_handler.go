package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"openmart/internal/auth"
	"openmart/internal/model"
	"openmart/internal/service"
)

// UserHandler serves profiles and public seller pages.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateProfileRequest carries the editable user and profile fields.
type UpdateProfileRequest struct {
	Email            string `json:"email" form:"email" validate:"omitempty,email"`
	FirstName        string `json:"first_name" form:"first_name" validate:"max=150"`
	LastName         string `json:"last_name" form:"last_name" validate:"max=150"`
	PhoneNumber      string `json:"phone_number" form:"phone_number" validate:"max=20"`
	Location         string `json:"location" form:"location" validate:"max=100"`
	Bio              string `json:"bio" form:"bio" validate:"max=500"`
	Website          string `json:"website" form:"website" validate:"omitempty,url"`
	Facebook         string `json:"facebook" form:"facebook" validate:"omitempty,url"`
	Instagram        string `json:"instagram" form:"instagram" validate:"omitempty,url"`
	Twitter          string `json:"twitter" form:"twitter" validate:"omitempty,url"`
	PreferredContact string `json:"preferred_contact" form:"preferred_contact" validate:"omitempty,oneof=email phone chat"`
}

// GetProfile godoc
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ProfileView
// @Failure 401 {object} errors.ErrorResponse
// @Router /profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	view, err := h.svc.GetProfile(c.Request().Context(), auth.CurrentUser(c).ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// UpdateProfile godoc
// @Summary Update own profile
// @Description Accepts JSON or multipart form; a profile_image file replaces the avatar.
// @Tags users
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} service.ProfileView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /profile [post]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	view, err := h.svc.UpdateProfile(c.Request().Context(), auth.CurrentUser(c).ID, service.ProfileUpdate{
		Email:            req.Email,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		PhoneNumber:      req.PhoneNumber,
		Location:         req.Location,
		Bio:              req.Bio,
		Website:          req.Website,
		Facebook:         req.Facebook,
		Instagram:        req.Instagram,
		Twitter:          req.Twitter,
		PreferredContact: model.ContactPreference(req.PreferredContact),
	}, formFile(c, "profile_image"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// GetUser godoc
// @Summary Public seller page
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} service.SellerPage
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	page, err := h.svc.GetSellerPage(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, page)
}
