package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"openmart/internal/model"
)

// ReviewRepository defines review persistence operations.
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	Exists(ctx context.Context, sellerID, buyerID uint, listingID *uuid.UUID) (bool, error)
	ListBySeller(ctx context.Context, sellerID uint, limit int) ([]model.Review, error)
	Rating(ctx context.Context, sellerID uint) (model.SellerRating, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// Exists checks the (seller, buyer, listing) triple. A nil listing matches
// reviews that were left without one.
func (r *reviewRepository) Exists(ctx context.Context, sellerID, buyerID uint, listingID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("seller_id = ? AND buyer_id = ?", sellerID, buyerID)
	if listingID == nil {
		query = query.Where("listing_id IS NULL")
	} else {
		query = query.Where("listing_id = ?", *listingID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// ListBySeller returns the newest reviews first. A limit of zero means no limit.
func (r *reviewRepository) ListBySeller(ctx context.Context, sellerID uint, limit int) ([]model.Review, error) {
	query := r.db.WithContext(ctx).Preload("Buyer").
		Where("seller_id = ?", sellerID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var reviews []model.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// Rating aggregates the seller's reviews. The average is zero without reviews.
func (r *reviewRepository) Rating(ctx context.Context, sellerID uint) (model.SellerRating, error) {
	var rating model.SellerRating
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("seller_id = ?", sellerID).
		Scan(&rating).Error
	return rating, err
}
