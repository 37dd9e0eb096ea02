package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "openmart/internal/errors"
	"openmart/internal/model"
	"openmart/internal/repository"
	"openmart/internal/storage"
)

// ReportInput carries a new report. At least one target is required.
type ReportInput struct {
	ReportedUserID *uint
	ListingID      *uuid.UUID
	Reason         model.ReportReason
	Description    string
}

// ReportPage is one page of reports.
type ReportPage struct {
	Reports    []model.Report        `json:"reports"`
	Pagination repository.Pagination `json:"pagination"`
}

// ReportService handles the moderation workflow.
type ReportService interface {
	Create(ctx context.Context, reporter *model.User, in ReportInput, evidence *multipart.FileHeader) (*model.Report, error)
	List(ctx context.Context, actor *model.User, status model.ReportStatus, page repository.Page) (*ReportPage, error)
	Investigate(ctx context.Context, actor *model.User, id uint) (*model.Report, error)
	Resolve(ctx context.Context, actor *model.User, id uint, notes string) (*model.Report, error)
	Dismiss(ctx context.Context, actor *model.User, id uint, notes string) (*model.Report, error)
}

type reportService struct {
	reports  repository.ReportRepository
	users    repository.UserRepository
	listings repository.ListingRepository
	store    storage.ImageStore
	now      func() time.Time
}

// NewReportService creates a new report service.
func NewReportService(
	reports repository.ReportRepository,
	users repository.UserRepository,
	listings repository.ListingRepository,
	store storage.ImageStore,
) ReportService {
	return &reportService{
		reports:  reports,
		users:    users,
		listings: listings,
		store:    store,
		now:      time.Now,
	}
}

func (s *reportService) Create(ctx context.Context, reporter *model.User, in ReportInput, evidence *multipart.FileHeader) (*model.Report, error) {
	if in.ReportedUserID == nil && in.ListingID == nil {
		return nil, apperrors.ErrReportTargetRequired
	}
	if !in.Reason.Valid() {
		return nil, apperrors.ErrInvalidReason
	}
	if in.ReportedUserID != nil {
		if _, err := s.users.FindByID(ctx, *in.ReportedUserID); err != nil {
			return nil, translate(err, apperrors.ErrUserNotFound, "find reported user")
		}
	}
	if in.ListingID != nil {
		if _, err := s.listings.FindByID(ctx, *in.ListingID); err != nil {
			return nil, translate(err, apperrors.ErrListingNotFound, "find reported listing")
		}
	}

	report := &model.Report{
		ReporterID:     reporter.ID,
		ReportedUserID: in.ReportedUserID,
		ListingID:      in.ListingID,
		Reason:         in.Reason,
		Description:    strings.TrimSpace(in.Description),
		Status:         model.ReportStatusPending,
	}
	if evidence != nil {
		url, err := s.store.Save(ctx, storage.FolderEvidence, evidence)
		if err != nil {
			return nil, err
		}
		report.EvidenceURL = url
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	slog.InfoContext(ctx, "report filed", "report_id", report.ID, "reporter_id", reporter.ID, "reason", report.Reason)
	return report, nil
}

func (s *reportService) List(ctx context.Context, actor *model.User, status model.ReportStatus, page repository.Page) (*ReportPage, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	reports, total, err := s.reports.List(ctx, status, page)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return &ReportPage{Reports: reports, Pagination: page.Meta(total)}, nil
}

func (s *reportService) Investigate(ctx context.Context, actor *model.User, id uint) (*model.Report, error) {
	return s.transition(ctx, actor, id, model.ReportStatusInvestigating, "")
}

func (s *reportService) Resolve(ctx context.Context, actor *model.User, id uint, notes string) (*model.Report, error) {
	return s.transition(ctx, actor, id, model.ReportStatusResolved, notes)
}

func (s *reportService) Dismiss(ctx context.Context, actor *model.User, id uint, notes string) (*model.Report, error) {
	return s.transition(ctx, actor, id, model.ReportStatusDismissed, notes)
}

// transition applies one step of the status machine. The update is guarded by
// the status that was read, so a concurrent change makes it fail cleanly.
func (s *reportService) transition(ctx context.Context, actor *model.User, id uint, to model.ReportStatus, notes string) (*model.Report, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, apperrors.ErrReportNotFound, "find report")
	}
	if !report.Status.CanTransition(to) {
		return nil, apperrors.ErrInvalidTransition
	}

	ok, err := s.reports.Transition(ctx, id, report.Status, to, actor.ID, notes, s.now())
	if err != nil {
		return nil, fmt.Errorf("update report: %w", err)
	}
	if !ok {
		return nil, apperrors.ErrInvalidTransition
	}
	slog.InfoContext(ctx, "report status changed", "report_id", id, "from", report.Status, "to", to, "staff_id", actor.ID)

	updated, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, apperrors.ErrReportNotFound, "reload report")
	}
	return updated, nil
}
