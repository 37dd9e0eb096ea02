package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxListingImages caps the images attached to one listing.
const MaxListingImages = 8

// BoostDuration is how long an approved boost lasts.
const BoostDuration = 7 * 24 * time.Hour

// Condition describes the state of a listed item.
type Condition string

const (
	ConditionNew         Condition = "new"
	ConditionUsedLikeNew Condition = "used_like_new"
	ConditionUsedGood    Condition = "used_good"
	ConditionUsedFair    Condition = "used_fair"
)

// Conditions lists the accepted conditions in display order.
var Conditions = []Condition{ConditionNew, ConditionUsedLikeNew, ConditionUsedGood, ConditionUsedFair}

// Listing is a sellable item owned by one seller.
type Listing struct {
	ID           uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	SellerID     uint            `json:"seller_id" gorm:"not null;index"`
	Title        string          `json:"title" gorm:"size:200;not null"`
	Description  string          `json:"description" gorm:"type:text;not null"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;index"`
	Negotiable   bool            `json:"negotiable"`
	CategoryID   *uint           `json:"category_id,omitempty" gorm:"index:idx_listing_category_active,priority:1"`
	Condition    Condition       `json:"condition" gorm:"type:varchar(20);not null;default:'used_good'"`
	Location     string          `json:"location" gorm:"size:200;not null"`
	IsActive     bool            `json:"is_active" gorm:"index:idx_listing_live,priority:1;index:idx_listing_category_active,priority:2"`
	IsSold       bool            `json:"is_sold" gorm:"index:idx_listing_live,priority:2"`
	IsBoosted    bool            `json:"is_boosted"`
	IsFeatured   bool            `json:"is_featured"`
	BoostedUntil *time.Time      `json:"boosted_until,omitempty"`
	Views        int             `json:"views" gorm:"not null;default:0"`
	Saves        int             `json:"saves" gorm:"not null;default:0"`
	CreatedAt    time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Relations
	Seller   *User          `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Category *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Images   []ListingImage `json:"images,omitempty" gorm:"foreignKey:ListingID"`
}

// BeforeCreate sets UUID before creating the record.
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// IsLive reports whether the listing is publicly browsable.
func (l *Listing) IsLive() bool {
	return l.IsActive && !l.IsSold
}

// IsBoostActive reports whether a boost is in effect at now.
func (l *Listing) IsBoostActive(now time.Time) bool {
	return l.IsBoosted && l.BoostedUntil != nil && l.BoostedUntil.After(now)
}

// PrimaryImage returns the primary image, falling back to the first one.
func (l *Listing) PrimaryImage() *ListingImage {
	for i := range l.Images {
		if l.Images[i].IsPrimary {
			return &l.Images[i]
		}
	}
	if len(l.Images) > 0 {
		return &l.Images[0]
	}
	return nil
}

// ListingImage is a picture attached to a listing.
type ListingImage struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ListingID  uuid.UUID `json:"listing_id" gorm:"type:char(36);not null;index"`
	URL        string    `json:"url" gorm:"size:500;not null"`
	IsPrimary  bool      `json:"is_primary"`
	UploadedAt time.Time `json:"uploaded_at" gorm:"autoCreateTime"`
}

// SavedListing records that a user bookmarked a listing.
type SavedListing struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_saved_user_listing"`
	ListingID uuid.UUID `json:"listing_id" gorm:"type:char(36);not null;uniqueIndex:idx_saved_user_listing"`
	SavedAt   time.Time `json:"saved_at" gorm:"autoCreateTime"`

	Listing *Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
}
