package model

import (
	"time"

	"github.com/google/uuid"
)

// ReportReason is the closed set of reasons a report may carry.
type ReportReason string

const (
	ReasonSpam          ReportReason = "spam"
	ReasonFraud         ReportReason = "fraud"
	ReasonOffensive     ReportReason = "offensive"
	ReasonInappropriate ReportReason = "inappropriate"
	ReasonFake          ReportReason = "fake"
	ReasonHarassment    ReportReason = "harassment"
	ReasonOther         ReportReason = "other"
)

// Valid reports whether r is one of the known reasons.
func (r ReportReason) Valid() bool {
	switch r {
	case ReasonSpam, ReasonFraud, ReasonOffensive, ReasonInappropriate, ReasonFake, ReasonHarassment, ReasonOther:
		return true
	}
	return false
}

// ReportStatus represents the moderation state of a report.
type ReportStatus string

const (
	ReportStatusPending       ReportStatus = "pending"
	ReportStatusInvestigating ReportStatus = "investigating"
	ReportStatusResolved      ReportStatus = "resolved"
	ReportStatusDismissed     ReportStatus = "dismissed"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusResolved || s == ReportStatusDismissed
}

// CanTransition reports whether a report may move from s to next.
func (s ReportStatus) CanTransition(next ReportStatus) bool {
	switch s {
	case ReportStatusPending:
		return next == ReportStatusInvestigating || next.IsTerminal()
	case ReportStatusInvestigating:
		return next.IsTerminal()
	default:
		return false
	}
}

// Report flags a user or a listing for operator review.
type Report struct {
	ID              uint         `json:"id" gorm:"primaryKey"`
	ReporterID      uint         `json:"reporter_id" gorm:"not null;index"`
	ReportedUserID  *uint        `json:"reported_user_id,omitempty" gorm:"index"`
	ListingID       *uuid.UUID   `json:"listing_id,omitempty" gorm:"type:char(36);index"`
	Reason          ReportReason `json:"reason" gorm:"type:varchar(50);not null"`
	Description     string       `json:"description" gorm:"type:text;not null"`
	EvidenceURL     string       `json:"evidence_url,omitempty" gorm:"size:500"`
	Status          ReportStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt       time.Time    `json:"created_at" gorm:"index"`
	ResolvedAt      *time.Time   `json:"resolved_at,omitempty"`
	ResolvedByID    *uint        `json:"resolved_by_id,omitempty" gorm:"index"`
	ResolutionNotes string       `json:"resolution_notes" gorm:"type:text"`

	Reporter *User `json:"reporter,omitempty" gorm:"foreignKey:ReporterID"`
}
