package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"openmart/internal/auth"
	"openmart/internal/model"
	"openmart/internal/service"
)

// ReportHandler files reports and runs the staff moderation queue.
type ReportHandler struct {
	reports service.ReportService
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reports service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ReportRequest carries a report. Evidence may be attached as a multipart "evidence" file.
type ReportRequest struct {
	ReportedUserID uint   `json:"reported_user_id" form:"reported_user_id"`
	ListingID      string `json:"listing_id" form:"listing_id" validate:"omitempty,uuid"`
	Reason         string `json:"reason" form:"reason" validate:"required,oneof=spam fraud offensive inappropriate fake harassment other"`
	Description    string `json:"description" form:"description" validate:"required,max=2000"`
}

// ResolutionRequest carries staff notes for resolve and dismiss.
type ResolutionRequest struct {
	Notes string `json:"resolution_notes" form:"resolution_notes" validate:"max=2000"`
}

func (h *ReportHandler) create(c echo.Context, userID *uint, listingID *uuid.UUID) error {
	var req ReportRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in := service.ReportInput{
		ReportedUserID: userID,
		ListingID:      listingID,
		Reason:         model.ReportReason(req.Reason),
		Description:    req.Description,
	}
	if in.ReportedUserID == nil && req.ReportedUserID != 0 {
		id := req.ReportedUserID
		in.ReportedUserID = &id
	}
	if in.ListingID == nil && req.ListingID != "" {
		id, err := uuid.Parse(req.ListingID)
		if err != nil {
			return badParam("listing_id")
		}
		in.ListingID = &id
	}

	report, err := h.reports.Create(c.Request().Context(), auth.CurrentUser(c), in, formFile(c, "evidence"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, report)
}

// Create godoc
// @Summary File a report
// @Description At least one of reported_user_id and listing_id is required.
// @Tags reports
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body ReportRequest true "Report"
// @Success 201 {object} model.Report
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reports/create [post]
func (h *ReportHandler) Create(c echo.Context) error {
	return h.create(c, nil, nil)
}

// CreateForUser godoc
// @Summary Report a user
// @Tags reports
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body ReportRequest true "Report"
// @Success 201 {object} model.Report
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reports/create/user/{id} [post]
func (h *ReportHandler) CreateForUser(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	return h.create(c, &id, nil)
}

// CreateForListing godoc
// @Summary Report a listing
// @Tags reports
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Param request body ReportRequest true "Report"
// @Success 201 {object} model.Report
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reports/create/listing/{id} [post]
func (h *ReportHandler) CreateForListing(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	return h.create(c, nil, &id)
}

// List godoc
// @Summary Moderation queue
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, investigating, resolved or dismissed"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} service.ReportPage
// @Failure 403 {object} errors.ErrorResponse
// @Router /dashboard/reports [get]
func (h *ReportHandler) List(c echo.Context) error {
	page, err := h.reports.List(c.Request().Context(), auth.CurrentUser(c),
		model.ReportStatus(c.QueryParam("status")), pageParams(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Investigate godoc
// @Summary Start investigating a report
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {object} model.Report
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /dashboard/reports/{id}/investigate [post]
func (h *ReportHandler) Investigate(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	report, err := h.reports.Investigate(c.Request().Context(), auth.CurrentUser(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// Resolve godoc
// @Summary Resolve a report
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Param request body ResolutionRequest false "Notes"
// @Success 200 {object} model.Report
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /dashboard/reports/{id}/resolve [post]
func (h *ReportHandler) Resolve(c echo.Context) error {
	return h.close(c, h.reports.Resolve)
}

// Dismiss godoc
// @Summary Dismiss a report
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Param request body ResolutionRequest false "Notes"
// @Success 200 {object} model.Report
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /dashboard/reports/{id}/dismiss [post]
func (h *ReportHandler) Dismiss(c echo.Context) error {
	return h.close(c, h.reports.Dismiss)
}

type closeFunc func(ctx context.Context, actor *model.User, id uint, notes string) (*model.Report, error)

func (h *ReportHandler) close(c echo.Context, fn closeFunc) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req ResolutionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	report, err := fn(c.Request().Context(), auth.CurrentUser(c), id, req.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
