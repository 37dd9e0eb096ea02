package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a marketplace account. Users are never hard-deleted.
type User struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Username          string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email             string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	FirstName         string    `json:"first_name" gorm:"size:150"`
	LastName          string    `json:"last_name" gorm:"size:150"`
	PasswordHash      string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	PhoneNumber       string    `json:"phone_number,omitempty" gorm:"size:20"`
	Location          string    `json:"location,omitempty" gorm:"size:200"`
	ProfileImage      string    `json:"profile_image,omitempty" gorm:"size:500"`
	IsStaff           bool      `json:"is_staff" gorm:"index"`
	IsVerified        bool      `json:"is_verified"`
	EmailVerified     bool      `json:"email_verified"`
	PhoneVerified     bool      `json:"phone_verified"`
	VerificationToken uuid.UUID `json:"-" gorm:"type:char(36);uniqueIndex;not null"`
	TotalListings     int       `json:"total_listings" gorm:"not null;default:0"`
	SoldListings      int       `json:"sold_listings" gorm:"not null;default:0"`
	CreatedAt         time.Time `json:"created_at" gorm:"index"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Relations
	Profile *UserProfile `json:"profile,omitempty" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets the verification token before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.VerificationToken == uuid.Nil {
		u.VerificationToken = uuid.New()
	}
	return nil
}

// CanModerate reports whether the user may use operator-only features.
func (u *User) CanModerate() bool {
	return u != nil && u.IsStaff
}

// ContactPreference is the preferred channel buyers should use.
type ContactPreference string

const (
	ContactEmail ContactPreference = "email"
	ContactPhone ContactPreference = "phone"
	ContactChat  ContactPreference = "chat"
)

// UserProfile holds optional public profile metadata, one per user.
type UserProfile struct {
	ID               uint              `json:"-" gorm:"primaryKey"`
	UserID           uint              `json:"user_id" gorm:"uniqueIndex;not null"`
	Bio              string            `json:"bio" gorm:"type:text"`
	Website          string            `json:"website" gorm:"size:200"`
	Facebook         string            `json:"facebook" gorm:"size:200"`
	Instagram        string            `json:"instagram" gorm:"size:200"`
	Twitter          string            `json:"twitter" gorm:"size:200"`
	PreferredContact ContactPreference `json:"preferred_contact" gorm:"type:varchar(20);not null;default:'chat'"`
}
