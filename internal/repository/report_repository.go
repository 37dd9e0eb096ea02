package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"openmart/internal/model"
)

// ReportRepository defines report persistence operations.
type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	FindByID(ctx context.Context, id uint) (*model.Report, error)
	List(ctx context.Context, status model.ReportStatus, page Page) ([]model.Report, int64, error)
	Transition(ctx context.Context, id uint, from, to model.ReportStatus, resolverID uint, notes string, at time.Time) (bool, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) FindByID(ctx context.Context, id uint) (*model.Report, error) {
	var report model.Report
	if err := r.db.WithContext(ctx).Preload("Reporter").First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns reports newest first, optionally filtered by status.
func (r *reportRepository) List(ctx context.Context, status model.ReportStatus, page Page) ([]model.Report, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []model.Report
	err := query.Preload("Reporter").
		Order("created_at DESC").Order("id DESC").
		Scopes(page.scope).Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// Transition moves a report from one status to another with a single
// conditional UPDATE. Terminal statuses also record who resolved it and when.
// It reports false when the report was no longer in the from status.
func (r *reportRepository) Transition(ctx context.Context, id uint, from, to model.ReportStatus, resolverID uint, notes string, at time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if to.IsTerminal() {
		updates["resolved_at"] = at
		updates["resolved_by_id"] = resolverID
		updates["resolution_notes"] = notes
	}
	result := r.db.WithContext(ctx).Model(&model.Report{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected == 1, result.Error
}
