package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatThread is a buyer/seller conversation about one listing.
type ChatThread struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	ListingID uuid.UUID `json:"listing_id" gorm:"type:char(36);not null;uniqueIndex:idx_thread_triple"`
	BuyerID   uint      `json:"buyer_id" gorm:"not null;uniqueIndex:idx_thread_triple;index"`
	SellerID  uint      `json:"seller_id" gorm:"not null;uniqueIndex:idx_thread_triple;index"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"index"`

	// Relations
	Listing *Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
	Buyer   *User    `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Seller  *User    `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}

// BeforeCreate sets UUID before creating the record.
func (t *ChatThread) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// HasParticipant reports whether userID is the buyer or the seller.
func (t *ChatThread) HasParticipant(userID uint) bool {
	return t.BuyerID == userID || t.SellerID == userID
}

// OtherParticipant returns the id of the participant that is not userID.
func (t *ChatThread) OtherParticipant(userID uint) uint {
	if t.BuyerID == userID {
		return t.SellerID
	}
	return t.BuyerID
}

// Message is a chat entry. Only IsRead changes after creation, and only false to true.
type Message struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	ThreadID uuid.UUID `json:"thread_id" gorm:"type:char(36);not null;index:idx_message_thread_read,priority:1"`
	SenderID uint      `json:"sender_id" gorm:"not null;index"`
	Content  string    `json:"content" gorm:"type:text"`
	ImageURL string    `json:"image_url,omitempty" gorm:"size:500"`
	IsRead   bool      `json:"is_read" gorm:"index:idx_message_thread_read,priority:2"`
	SentAt   time.Time `json:"sent_at" gorm:"autoCreateTime;index"`

	Sender *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}

// BlockedUser is a directed blocker -> blocked edge.
type BlockedUser struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BlockerID uint      `json:"blocker_id" gorm:"not null;uniqueIndex:idx_block_pair"`
	BlockedID uint      `json:"blocked_id" gorm:"not null;uniqueIndex:idx_block_pair;index"`
	Reason    string    `json:"reason" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}
