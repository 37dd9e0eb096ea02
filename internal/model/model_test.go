package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestListing_IsBoostActive(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name    string
		listing Listing
		want    bool
	}{
		{"not boosted", Listing{IsBoosted: false, BoostedUntil: &future}, false},
		{"boosted without expiry", Listing{IsBoosted: true}, false},
		{"boosted and expired", Listing{IsBoosted: true, BoostedUntil: &past}, false},
		{"boosted until exactly now", Listing{IsBoosted: true, BoostedUntil: &now}, false},
		{"boosted in future", Listing{IsBoosted: true, BoostedUntil: &future}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.listing.IsBoostActive(now))
		})
	}
}

func TestListing_IsLive(t *testing.T) {
	assert.True(t, (&Listing{IsActive: true}).IsLive())
	assert.False(t, (&Listing{IsActive: true, IsSold: true}).IsLive())
	assert.False(t, (&Listing{IsActive: false}).IsLive())
}

func TestListing_PrimaryImage(t *testing.T) {
	l := Listing{}
	assert.Nil(t, l.PrimaryImage())

	l.Images = []ListingImage{{ID: 1}, {ID: 2, IsPrimary: true}}
	assert.Equal(t, uint(2), l.PrimaryImage().ID)

	l.Images[1].IsPrimary = false
	assert.Equal(t, uint(1), l.PrimaryImage().ID)
}

func TestReportStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to ReportStatus
		want     bool
	}{
		{ReportStatusPending, ReportStatusInvestigating, true},
		{ReportStatusPending, ReportStatusResolved, true},
		{ReportStatusPending, ReportStatusDismissed, true},
		{ReportStatusPending, ReportStatusPending, false},
		{ReportStatusInvestigating, ReportStatusResolved, true},
		{ReportStatusInvestigating, ReportStatusDismissed, true},
		{ReportStatusInvestigating, ReportStatusPending, false},
		{ReportStatusInvestigating, ReportStatusInvestigating, false},
		{ReportStatusResolved, ReportStatusDismissed, false},
		{ReportStatusResolved, ReportStatusInvestigating, false},
		{ReportStatusDismissed, ReportStatusResolved, false},
		{ReportStatusDismissed, ReportStatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestReportReason_Valid(t *testing.T) {
	assert.True(t, ReasonFraud.Valid())
	assert.True(t, ReasonOther.Valid())
	assert.False(t, ReportReason("rude").Valid())
	assert.False(t, ReportReason("").Valid())
}

func TestChatThread_Participants(t *testing.T) {
	th := ChatThread{BuyerID: 1, SellerID: 2}
	assert.True(t, th.HasParticipant(1))
	assert.True(t, th.HasParticipant(2))
	assert.False(t, th.HasParticipant(3))
	assert.Equal(t, uint(2), th.OtherParticipant(1))
	assert.Equal(t, uint(1), th.OtherParticipant(2))
}

func TestUser_CanModerate(t *testing.T) {
	var nobody *User
	assert.False(t, nobody.CanModerate())
	assert.False(t, (&User{}).CanModerate())
	assert.True(t, (&User{IsStaff: true}).CanModerate())
}
