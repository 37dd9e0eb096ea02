package repository

import (
	"context"

	"gorm.io/gorm"

	"openmart/internal/model"
)

// CategoryRepository defines category persistence operations.
type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id uint) (*model.Category, error)
	FindOrCreate(ctx context.Context, category *model.Category) (bool, error)
	TopByListingCount(ctx context.Context, liveOnly bool, limit int) ([]model.CategoryCount, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindOrCreate looks a category up by name and inserts it when missing.
// It reports whether a row was created.
func (r *categoryRepository) FindOrCreate(ctx context.Context, category *model.Category) (bool, error) {
	result := r.db.WithContext(ctx).
		Where(model.Category{Name: category.Name}).
		Attrs(model.Category{Icon: category.Icon, Description: category.Description, ParentID: category.ParentID}).
		FirstOrCreate(category)
	return result.RowsAffected > 0, result.Error
}

// TopByListingCount returns categories ordered by how many listings they hold.
func (r *categoryRepository) TopByListingCount(ctx context.Context, liveOnly bool, limit int) ([]model.CategoryCount, error) {
	join := "LEFT JOIN listings ON listings.category_id = categories.id"
	if liveOnly {
		join += " AND listings.is_active = ? AND listings.is_sold = ?"
	}
	query := r.db.WithContext(ctx).Model(&model.Category{}).
		Select("categories.*, COUNT(listings.id) AS listing_count")
	if liveOnly {
		query = query.Joins(join, true, false)
	} else {
		query = query.Joins(join)
	}

	var rows []model.CategoryCount
	err := query.
		Group("categories.id").
		Order("listing_count DESC").Order("categories.name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
