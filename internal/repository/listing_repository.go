package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "openmart/internal/errors"
	"openmart/internal/model"
)

// Browse sort orders.
const (
	SortRecent    = "recent"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortPopular   = "popular"
)

// Moderation status filters.
const (
	StatusActive   = "active"
	StatusSold     = "sold"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

// ListingFilter narrows a browse query. Zero values disable a filter.
type ListingFilter struct {
	Category  string
	Condition model.Condition
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Location  string
	Search    string
	Sort      string
}

// ListingRepository defines listing, image and saved-listing persistence.
type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing, images []model.ListingImage) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Listing, error)
	Update(ctx context.Context, listing *model.Listing) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	MarkSold(ctx context.Context, id uuid.UUID, sellerID uint) (bool, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	ApproveBoost(ctx context.Context, id uuid.UUID, until time.Time) error

	AddImage(ctx context.Context, image *model.ListingImage) error
	SetPrimaryImage(ctx context.Context, listingID uuid.UUID, imageID uint) error

	ToggleSave(ctx context.Context, userID uint, listingID uuid.UUID) (bool, error)
	IsSaved(ctx context.Context, userID uint, listingID uuid.UUID) (bool, error)
	ListSaved(ctx context.Context, userID uint, limit int) ([]model.Listing, error)
	CountSavedBy(ctx context.Context, listingID uuid.UUID) (int64, error)

	Search(ctx context.Context, filter ListingFilter, page Page) ([]model.Listing, int64, error)
	Featured(ctx context.Context, limit int) ([]model.Listing, error)
	Recent(ctx context.Context, liveOnly bool, limit int) ([]model.Listing, error)
	BoostActive(ctx context.Context, now time.Time, limit int) ([]model.Listing, error)
	Similar(ctx context.Context, listing *model.Listing, limit int) ([]model.Listing, error)
	BySeller(ctx context.Context, sellerID uint, excludeID *uuid.UUID, liveOnly bool, limit int) ([]model.Listing, error)
	ListForModeration(ctx context.Context, status string, page Page) ([]model.Listing, int64, error)

	CountAll(ctx context.Context) (int64, error)
	CountLive(ctx context.Context) (int64, error)
	CountBoostActive(ctx context.Context, now time.Time) (int64, error)
	CountLiveBySeller(ctx context.Context, sellerID uint) (int64, error)
	CountSoldBySeller(ctx context.Context, sellerID uint) (int64, error)
	RevenueBySeller(ctx context.Context, sellerID uint) (decimal.Decimal, error)
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func live(db *gorm.DB) *gorm.DB {
	return db.Where("listings.is_active = ? AND listings.is_sold = ?", true, false)
}

func active(db *gorm.DB) *gorm.DB {
	return db.Where("listings.is_active = ?", true)
}

func withImages(db *gorm.DB) *gorm.DB {
	return db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("listing_images.id ASC")
	})
}

// Create inserts the listing with its images and bumps the seller's listing counter.
func (r *listingRepository) Create(ctx context.Context, listing *model.Listing, images []model.ListingImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(listing).Error; err != nil {
			return err
		}
		for i := range images {
			images[i].ListingID = listing.ID
			images[i].IsPrimary = i == 0
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}
		listing.Images = images
		return tx.Model(&model.User{}).Where("id = ?", listing.SellerID).
			UpdateColumn("total_listings", gorm.Expr("total_listings + ?", 1)).Error
	})
}

func (r *listingRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Listing, error) {
	var listing model.Listing
	err := r.db.WithContext(ctx).
		Preload("Seller").Preload("Category").Scopes(withImages).
		Where("id = ?", id).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// Update replaces the editable fields of a listing.
func (r *listingRepository) Update(ctx context.Context, listing *model.Listing) error {
	return r.db.WithContext(ctx).Model(listing).
		Select("title", "description", "price", "negotiable", "category_id", "condition", "location").
		Updates(listing).Error
}

func (r *listingRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Listing{}).Where("id = ?", id).
		Update("is_active", false).Error
}

// MarkSold flips is_sold once. It reports false when the listing was already sold.
func (r *listingRepository) MarkSold(ctx context.Context, id uuid.UUID, sellerID uint) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Listing{}).
			Where("id = ? AND is_sold = ?", id, false).
			Update("is_sold", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		changed = true
		return tx.Model(&model.User{}).Where("id = ?", sellerID).
			UpdateColumn("sold_listings", gorm.Expr("sold_listings + ?", 1)).Error
	})
	return changed, err
}

// IncrementViews bumps the view counter with a single atomic UPDATE.
func (r *listingRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Listing{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

func (r *listingRepository) ApproveBoost(ctx context.Context, id uuid.UUID, until time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Listing{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_boosted": true, "boosted_until": until}).Error
}

// AddImage attaches an image, keeping at most one primary and the image cap.
// The first image of a listing always becomes primary.
func (r *listingRepository) AddImage(ctx context.Context, image *model.ListingImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.ListingImage{}).Where("listing_id = ?", image.ListingID).Count(&count).Error; err != nil {
			return err
		}
		if count >= model.MaxListingImages {
			return apperrors.ErrTooManyImages
		}
		if count == 0 {
			image.IsPrimary = true
		}
		if image.IsPrimary {
			if err := clearPrimary(tx, image.ListingID); err != nil {
				return err
			}
		}
		return tx.Create(image).Error
	})
}

// SetPrimaryImage marks one image primary and clears the flag on its siblings.
func (r *listingRepository) SetPrimaryImage(ctx context.Context, listingID uuid.UUID, imageID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var image model.ListingImage
		if err := tx.Where("id = ? AND listing_id = ?", imageID, listingID).First(&image).Error; err != nil {
			return err
		}
		if err := clearPrimary(tx, listingID); err != nil {
			return err
		}
		return tx.Model(&image).Update("is_primary", true).Error
	})
}

func clearPrimary(tx *gorm.DB, listingID uuid.UUID) error {
	return tx.Model(&model.ListingImage{}).
		Where("listing_id = ? AND is_primary = ?", listingID, true).
		Update("is_primary", false).Error
}

// ToggleSave adds or removes the listing from the user's saved set and moves
// the saves counter by exactly one. It reports the resulting saved state.
func (r *listingRepository) ToggleSave(ctx context.Context, userID uint, listingID uuid.UUID) (bool, error) {
	saved := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.SavedListing
		err := tx.Where("user_id = ? AND listing_id = ?", userID, listingID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			return tx.Model(&model.Listing{}).Where("id = ?", listingID).
				UpdateColumn("saves", gorm.Expr("saves - ?", 1)).Error
		case err == gorm.ErrRecordNotFound:
			if err := tx.Create(&model.SavedListing{UserID: userID, ListingID: listingID}).Error; err != nil {
				return err
			}
			saved = true
			return tx.Model(&model.Listing{}).Where("id = ?", listingID).
				UpdateColumn("saves", gorm.Expr("saves + ?", 1)).Error
		default:
			return err
		}
	})
	return saved, err
}

func (r *listingRepository) IsSaved(ctx context.Context, userID uint, listingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SavedListing{}).
		Where("user_id = ? AND listing_id = ?", userID, listingID).Count(&count).Error
	return count > 0, err
}

// ListSaved returns the user's saved listings, most recently saved first.
// A limit of zero returns all of them.
func (r *listingRepository) ListSaved(ctx context.Context, userID uint, limit int) ([]model.Listing, error) {
	query := r.db.WithContext(ctx).Scopes(withImages).
		Joins("JOIN saved_listings ON saved_listings.listing_id = listings.id").
		Where("saved_listings.user_id = ?", userID).
		Order("saved_listings.saved_at DESC").Order("saved_listings.id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var listings []model.Listing
	if err := query.Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *listingRepository) CountSavedBy(ctx context.Context, listingID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SavedListing{}).Where("listing_id = ?", listingID).Count(&count).Error
	return count, err
}

// Search returns live listings matching filter, sorted and paginated.
func (r *listingRepository) Search(ctx context.Context, filter ListingFilter, page Page) ([]model.Listing, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Listing{}).
		Joins("LEFT JOIN categories ON categories.id = listings.category_id").
		Scopes(live)

	if filter.Category != "" {
		query = query.Where("categories.name = ?", filter.Category)
	}
	if filter.Condition != "" {
		query = query.Where("listings.condition = ?", filter.Condition)
	}
	if filter.MinPrice != nil {
		query = query.Where("listings.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("listings.price <= ?", *filter.MaxPrice)
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		query = query.Where("LOWER(listings.location) LIKE ?", "%"+strings.ToLower(loc)+"%")
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"LOWER(listings.title) LIKE ? OR LOWER(listings.description) LIKE ? OR LOWER(categories.name) LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.Sort {
	case SortPriceAsc:
		query = query.Order("listings.price ASC")
	case SortPriceDesc:
		query = query.Order("listings.price DESC")
	case SortPopular:
		query = query.Order("listings.views DESC")
	}
	query = query.Order("listings.created_at DESC")

	var listings []model.Listing
	if err := query.Preload("Category").Scopes(withImages, page.scope).Find(&listings).Error; err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *listingRepository) Featured(ctx context.Context, limit int) ([]model.Listing, error) {
	var listings []model.Listing
	err := r.db.WithContext(ctx).Scopes(live, withImages).
		Where("listings.is_featured = ?", true).
		Order("listings.created_at DESC").Limit(limit).Find(&listings).Error
	return listings, err
}

// Recent returns the newest active listings, optionally excluding sold ones.
func (r *listingRepository) Recent(ctx context.Context, liveOnly bool, limit int) ([]model.Listing, error) {
	query := r.db.WithContext(ctx).Scopes(withImages)
	if liveOnly {
		query = query.Scopes(live)
	} else {
		query = query.Scopes(active)
	}
	var listings []model.Listing
	err := query.Order("listings.created_at DESC").Limit(limit).Find(&listings).Error
	return listings, err
}

// BoostActive returns live listings whose boost has not expired at now.
func (r *listingRepository) BoostActive(ctx context.Context, now time.Time, limit int) ([]model.Listing, error) {
	var listings []model.Listing
	err := r.db.WithContext(ctx).Scopes(live, withImages).
		Where("listings.is_boosted = ? AND listings.boosted_until > ?", true, now).
		Order("listings.boosted_until DESC").Limit(limit).Find(&listings).Error
	return listings, err
}

// Similar returns other live listings in the same category.
func (r *listingRepository) Similar(ctx context.Context, listing *model.Listing, limit int) ([]model.Listing, error) {
	if listing.CategoryID == nil {
		return []model.Listing{}, nil
	}
	var listings []model.Listing
	err := r.db.WithContext(ctx).Scopes(live, withImages).
		Where("listings.category_id = ? AND listings.id <> ?", *listing.CategoryID, listing.ID).
		Order("listings.created_at DESC").Limit(limit).Find(&listings).Error
	return listings, err
}

// BySeller returns a seller's listings newest first. A limit of zero means no limit.
func (r *listingRepository) BySeller(ctx context.Context, sellerID uint, excludeID *uuid.UUID, liveOnly bool, limit int) ([]model.Listing, error) {
	query := r.db.WithContext(ctx).Scopes(withImages).Where("listings.seller_id = ?", sellerID)
	if liveOnly {
		query = query.Scopes(live)
	}
	if excludeID != nil {
		query = query.Where("listings.id <> ?", *excludeID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var listings []model.Listing
	err := query.Order("listings.created_at DESC").Find(&listings).Error
	return listings, err
}

// ListForModeration lists all listings newest first with an optional status filter.
func (r *listingRepository) ListForModeration(ctx context.Context, status string, page Page) ([]model.Listing, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Listing{})
	switch status {
	case StatusActive:
		query = query.Scopes(live)
	case StatusSold:
		query = query.Where("listings.is_sold = ?", true)
	case StatusInactive:
		query = query.Where("listings.is_active = ?", false)
	case StatusPending:
		query = query.Where("listings.is_active = ? AND listings.is_boosted = ?", true, false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var listings []model.Listing
	err := query.Preload("Seller").Preload("Category").
		Order("listings.created_at DESC").Scopes(page.scope).Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *listingRepository) count(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Listing{}).Scopes(scopes...).Count(&count).Error
	return count, err
}

func (r *listingRepository) CountAll(ctx context.Context) (int64, error) {
	return r.count(ctx)
}

func (r *listingRepository) CountLive(ctx context.Context) (int64, error) {
	return r.count(ctx, live)
}

func (r *listingRepository) CountBoostActive(ctx context.Context, now time.Time) (int64, error) {
	return r.count(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("listings.is_boosted = ? AND listings.boosted_until > ?", true, now)
	})
}

func (r *listingRepository) CountLiveBySeller(ctx context.Context, sellerID uint) (int64, error) {
	return r.count(ctx, live, bySeller(sellerID))
}

func (r *listingRepository) CountSoldBySeller(ctx context.Context, sellerID uint) (int64, error) {
	return r.count(ctx, bySeller(sellerID), func(db *gorm.DB) *gorm.DB {
		return db.Where("listings.is_sold = ?", true)
	})
}

// RevenueBySeller sums the price of the seller's sold listings.
func (r *listingRepository) RevenueBySeller(ctx context.Context, sellerID uint) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	row := r.db.WithContext(ctx).Model(&model.Listing{}).
		Select("SUM(listings.price)").
		Where("listings.seller_id = ? AND listings.is_sold = ?", sellerID, true).
		Row()
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func bySeller(sellerID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("listings.seller_id = ?", sellerID)
	}
}
