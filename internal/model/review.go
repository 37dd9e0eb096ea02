package model

import (
	"time"

	"github.com/google/uuid"
)

// Review is a buyer's rating of a seller, optionally about one listing.
type Review struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	SellerID           uint       `json:"seller_id" gorm:"not null;uniqueIndex:idx_review_triple;index"`
	BuyerID            uint       `json:"buyer_id" gorm:"not null;uniqueIndex:idx_review_triple"`
	ListingID          *uuid.UUID `json:"listing_id,omitempty" gorm:"type:char(36);uniqueIndex:idx_review_triple"`
	Rating             int        `json:"rating" gorm:"not null"`
	Comment            string     `json:"comment" gorm:"type:text;not null"`
	IsVerifiedPurchase bool       `json:"is_verified_purchase"`
	CreatedAt          time.Time  `json:"created_at" gorm:"index"`

	Buyer *User `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
}

// SellerRating is the aggregate of a seller's reviews.
type SellerRating struct {
	Average float64 `json:"average_rating"`
	Count   int64   `json:"total_ratings"`
}
