package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"openmart/internal/auth"
	"openmart/internal/service"
)

// ReviewHandler serves seller reviews.
type ReviewHandler struct {
	reviews service.ReviewService
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviews service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// ReviewRequest carries a new review.
type ReviewRequest struct {
	Rating             int    `json:"rating" form:"rating" validate:"required,gte=1,lte=5"`
	Comment            string `json:"comment" form:"comment" validate:"required,max=2000"`
	ListingID          string `json:"listing_id" form:"listing_id" validate:"omitempty,uuid"`
	IsVerifiedPurchase bool   `json:"is_verified_purchase" form:"is_verified_purchase"`
}

// Create godoc
// @Summary Review a seller
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Seller ID"
// @Param request body ReviewRequest true "Review"
// @Success 201 {object} model.Review
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /seller/{id}/review [post]
func (h *ReviewHandler) Create(c echo.Context) error {
	sellerID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req ReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in := service.ReviewInput{
		Rating:             req.Rating,
		Comment:            req.Comment,
		IsVerifiedPurchase: req.IsVerifiedPurchase,
	}
	if req.ListingID != "" {
		id, err := uuid.Parse(req.ListingID)
		if err != nil {
			return badParam("listing_id")
		}
		in.ListingID = &id
	}

	review, err := h.reviews.Create(c.Request().Context(), auth.CurrentUser(c), sellerID, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, review)
}

// List godoc
// @Summary Reviews of a seller
// @Tags reviews
// @Produce json
// @Param id path int true "Seller ID"
// @Success 200 {object} service.SellerReviews
// @Failure 404 {object} errors.ErrorResponse
// @Router /seller/{id}/reviews [get]
func (h *ReviewHandler) List(c echo.Context) error {
	sellerID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	reviews, err := h.reviews.List(c.Request().Context(), sellerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reviews)
}
