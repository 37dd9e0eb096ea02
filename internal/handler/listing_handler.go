package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"openmart/internal/auth"
	"openmart/internal/model"
	"openmart/internal/repository"
	"openmart/internal/service"
)

// ListingHandler serves the catalog.
type ListingHandler struct {
	listings   service.ListingService
	categories service.CategoryService
}

// NewListingHandler creates a new listing handler.
func NewListingHandler(listings service.ListingService, categories service.CategoryService) *ListingHandler {
	return &ListingHandler{listings: listings, categories: categories}
}

// ListingRequest carries listing fields. Images are sent as multipart "images" files.
type ListingRequest struct {
	Title       string      `json:"title" form:"title" validate:"required,max=200"`
	Description string      `json:"description" form:"description" validate:"required"`
	Price       json.Number `json:"price" form:"price" swaggertype:"string" validate:"required"`
	Negotiable  bool        `json:"negotiable" form:"negotiable"`
	CategoryID  uint        `json:"category_id" form:"category_id"`
	Condition   string      `json:"condition" form:"condition" validate:"omitempty,oneof=new used_like_new used_good used_fair"`
	Location    string      `json:"location" form:"location" validate:"required,max=100"`
}

func (r ListingRequest) input() (service.ListingInput, error) {
	price, err := decimal.NewFromString(r.Price.String())
	if err != nil {
		return service.ListingInput{}, badParam("price")
	}
	in := service.ListingInput{
		Title:       r.Title,
		Description: r.Description,
		Price:       price,
		Negotiable:  r.Negotiable,
		Condition:   model.Condition(r.Condition),
		Location:    r.Location,
	}
	if r.CategoryID != 0 {
		id := r.CategoryID
		in.CategoryID = &id
	}
	return in, nil
}

// BrowseQuery holds the browse filters.
type BrowseQuery struct {
	Category  string `query:"category"`
	Condition string `query:"condition"`
	MinPrice  string `query:"min_price"`
	MaxPrice  string `query:"max_price"`
	Location  string `query:"location"`
	Search    string `query:"q"`
	Sort      string `query:"sort"`
}

func optionalDecimal(raw, name string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, badParam(name)
	}
	return &d, nil
}

// PrimaryImageResponse acknowledges a primary image change.
type PrimaryImageResponse struct {
	Success bool `json:"success"`
}

// Home godoc
// @Summary Landing page
// @Tags listings
// @Produce json
// @Success 200 {object} service.HomePage
// @Router / [get]
func (h *ListingHandler) Home(c echo.Context) error {
	home, err := h.listings.Home(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, home)
}

// Categories godoc
// @Summary List categories
// @Tags listings
// @Produce json
// @Success 200 {array} model.Category
// @Router /categories [get]
func (h *ListingHandler) Categories(c echo.Context) error {
	categories, err := h.categories.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

// Browse godoc
// @Summary Browse listings
// @Tags listings
// @Produce json
// @Param category query string false "Category name"
// @Param condition query string false "Condition"
// @Param min_price query string false "Minimum price"
// @Param max_price query string false "Maximum price"
// @Param location query string false "Location substring"
// @Param q query string false "Search text"
// @Param sort query string false "recent, price_asc, price_desc or popular"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} service.BrowseResult
// @Failure 400 {object} errors.ErrorResponse
// @Router /listings [get]
func (h *ListingHandler) Browse(c echo.Context) error {
	var q BrowseQuery
	if err := c.Bind(&q); err != nil {
		return badParam("query")
	}
	minPrice, err := optionalDecimal(q.MinPrice, "min_price")
	if err != nil {
		return err
	}
	maxPrice, err := optionalDecimal(q.MaxPrice, "max_price")
	if err != nil {
		return err
	}

	result, err := h.listings.Browse(c.Request().Context(), repository.ListingFilter{
		Category:  q.Category,
		Condition: model.Condition(q.Condition),
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
		Location:  q.Location,
		Search:    q.Search,
		Sort:      q.Sort,
	}, pageParams(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Detail godoc
// @Summary Listing detail
// @Description Counts a view on every call.
// @Tags listings
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} service.ListingDetail
// @Failure 404 {object} errors.ErrorResponse
// @Router /listings/{id} [get]
func (h *ListingHandler) Detail(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.listings.Detail(c.Request().Context(), auth.CurrentUser(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Create godoc
// @Summary Create a listing
// @Description Multipart requests may attach up to 8 "images"; the first becomes primary.
// @Tags listings
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body ListingRequest true "Listing"
// @Success 201 {object} model.Listing
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /listings/create [post]
func (h *ListingHandler) Create(c echo.Context) error {
	var req ListingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in, err := req.input()
	if err != nil {
		return err
	}
	listing, err := h.listings.Create(c.Request().Context(), auth.CurrentUser(c), in, formFiles(c, "images"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, listing)
}

// Update godoc
// @Summary Edit a listing
// @Tags listings
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Param request body ListingRequest true "Listing"
// @Success 200 {object} model.Listing
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /listings/{id}/edit [post]
func (h *ListingHandler) Update(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req ListingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in, err := req.input()
	if err != nil {
		return err
	}
	listing, err := h.listings.Update(c.Request().Context(), auth.CurrentUser(c), id, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, listing)
}

// Delete godoc
// @Summary Deactivate a listing
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /listings/{id}/delete [post]
func (h *ListingHandler) Delete(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.listings.Delete(c.Request().Context(), auth.CurrentUser(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "listing deleted"})
}

// MarkSold godoc
// @Summary Mark a listing sold
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 200 {object} model.Listing
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /listings/{id}/sold [post]
func (h *ListingHandler) MarkSold(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	listing, err := h.listings.MarkSold(c.Request().Context(), auth.CurrentUser(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, listing)
}

// ToggleSave godoc
// @Summary Save or unsave a listing
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 200 {object} service.SaveResult
// @Failure 404 {object} errors.ErrorResponse
// @Router /listings/{id}/save [post]
func (h *ListingHandler) ToggleSave(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	result, err := h.listings.ToggleSave(c.Request().Context(), auth.CurrentUser(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// AddImage godoc
// @Summary Attach an image
// @Tags listings
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Param image formData file true "Image"
// @Param is_primary formData bool false "Make primary"
// @Success 201 {object} model.ListingImage
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /listings/{id}/images [post]
func (h *ListingHandler) AddImage(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	file := formFile(c, "image")
	if file == nil {
		return badParam("image")
	}
	primary := c.FormValue("is_primary") == "true"
	image, err := h.listings.AddImage(c.Request().Context(), auth.CurrentUser(c), id, file, primary)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, image)
}

// SetPrimaryImage godoc
// @Summary Make an image primary
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Param image_id path int true "Image ID"
// @Success 200 {object} PrimaryImageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /listings/{id}/images/{image_id}/primary [post]
func (h *ListingHandler) SetPrimaryImage(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	imageID, err := uintParam(c, "image_id")
	if err != nil {
		return err
	}
	if err := h.listings.SetPrimaryImage(c.Request().Context(), auth.CurrentUser(c), id, imageID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, PrimaryImageResponse{Success: true})
}

// Saved godoc
// @Summary Saved listings
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Listing
// @Router /saved [get]
func (h *ListingHandler) Saved(c echo.Context) error {
	listings, err := h.listings.Saved(c.Request().Context(), auth.CurrentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, listings)
}
