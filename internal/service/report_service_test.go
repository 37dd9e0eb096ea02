package service

import (
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "openmart/internal/errors"
	"openmart/internal/model"
)

func TestReportService_Create(t *testing.T) {
	reporter := &model.User{ID: 1}
	reportedID := uint(2)
	listingID := uuid.New()

	tests := []struct {
		name          string
		input         ReportInput
		evidence      *multipart.FileHeader
		setupMock     func(*MockReportRepository, *MockUserRepository, *MockListingRepository)
		expectedError error
	}{
		{
			name:     "user report with evidence",
			input:    ReportInput{ReportedUserID: &reportedID, Reason: model.ReasonFraud, Description: "asked for prepayment"},
			evidence: &multipart.FileHeader{Filename: "chat.png"},
			setupMock: func(r *MockReportRepository, u *MockUserRepository, l *MockListingRepository) {
				u.On("FindByID", mock.Anything, reportedID).Return(&model.User{ID: reportedID}, nil)
				r.On("Create", mock.Anything, mock.MatchedBy(func(rep *model.Report) bool {
					return rep.Status == model.ReportStatusPending && rep.EvidenceURL == "/media/report_evidence/chat.png"
				})).Return(nil)
			},
		},
		{
			name:  "listing report",
			input: ReportInput{ListingID: &listingID, Reason: model.ReasonFake},
			setupMock: func(r *MockReportRepository, u *MockUserRepository, l *MockListingRepository) {
				l.On("FindByID", mock.Anything, listingID).Return(&model.Listing{ID: listingID}, nil)
				r.On("Create", mock.Anything, mock.AnythingOfType("*model.Report")).Return(nil)
			},
		},
		{
			name:          "no target",
			input:         ReportInput{Reason: model.ReasonSpam},
			setupMock:     func(*MockReportRepository, *MockUserRepository, *MockListingRepository) {},
			expectedError: apperrors.ErrReportTargetRequired,
		},
		{
			name:          "unknown reason",
			input:         ReportInput{ReportedUserID: &reportedID, Reason: "boring"},
			setupMock:     func(*MockReportRepository, *MockUserRepository, *MockListingRepository) {},
			expectedError: apperrors.ErrInvalidReason,
		},
		{
			name:  "missing listing",
			input: ReportInput{ListingID: &listingID, Reason: model.ReasonSpam},
			setupMock: func(r *MockReportRepository, u *MockUserRepository, l *MockListingRepository) {
				l.On("FindByID", mock.Anything, listingID).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrListingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := new(MockReportRepository)
			users := new(MockUserRepository)
			listings := new(MockListingRepository)
			tt.setupMock(reports, users, listings)

			service := NewReportService(reports, users, listings, &fakeStore{})
			report, err := service.Create(context.Background(), reporter, tt.input, tt.evidence)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, report)
			} else {
				require.NoError(t, err)
				assert.Equal(t, reporter.ID, report.ReporterID)
			}
			reports.AssertExpectations(t)
			users.AssertExpectations(t)
			listings.AssertExpectations(t)
		})
	}
}

func TestReportService_Transitions(t *testing.T) {
	staff := &model.User{ID: 10, IsStaff: true}
	member := &model.User{ID: 11}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	newService := func(reports *MockReportRepository) *reportService {
		s := NewReportService(reports, new(MockUserRepository), new(MockListingRepository), &fakeStore{}).(*reportService)
		s.now = func() time.Time { return at }
		return s
	}

	t.Run("pending to investigating", func(t *testing.T) {
		reports := new(MockReportRepository)
		reports.On("FindByID", mock.Anything, uint(5)).Return(&model.Report{ID: 5, Status: model.ReportStatusPending}, nil).Once()
		reports.On("Transition", mock.Anything, uint(5), model.ReportStatusPending, model.ReportStatusInvestigating, staff.ID, "", at).Return(true, nil)
		reports.On("FindByID", mock.Anything, uint(5)).Return(&model.Report{ID: 5, Status: model.ReportStatusInvestigating}, nil).Once()

		report, err := newService(reports).Investigate(context.Background(), staff, 5)
		require.NoError(t, err)
		assert.Equal(t, model.ReportStatusInvestigating, report.Status)
		reports.AssertExpectations(t)
	})

	t.Run("resolve records notes", func(t *testing.T) {
		reports := new(MockReportRepository)
		reports.On("FindByID", mock.Anything, uint(6)).Return(&model.Report{ID: 6, Status: model.ReportStatusInvestigating}, nil).Once()
		reports.On("Transition", mock.Anything, uint(6), model.ReportStatusInvestigating, model.ReportStatusResolved, staff.ID, "account suspended", at).Return(true, nil)
		reports.On("FindByID", mock.Anything, uint(6)).Return(&model.Report{ID: 6, Status: model.ReportStatusResolved, ResolutionNotes: "account suspended"}, nil).Once()

		report, err := newService(reports).Resolve(context.Background(), staff, 6, "account suspended")
		require.NoError(t, err)
		assert.Equal(t, "account suspended", report.ResolutionNotes)
	})

	t.Run("terminal report cannot move", func(t *testing.T) {
		reports := new(MockReportRepository)
		reports.On("FindByID", mock.Anything, uint(7)).Return(&model.Report{ID: 7, Status: model.ReportStatusDismissed}, nil)

		_, err := newService(reports).Resolve(context.Background(), staff, 7, "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
		reports.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("concurrent change loses", func(t *testing.T) {
		reports := new(MockReportRepository)
		reports.On("FindByID", mock.Anything, uint(8)).Return(&model.Report{ID: 8, Status: model.ReportStatusPending}, nil)
		reports.On("Transition", mock.Anything, uint(8), model.ReportStatusPending, model.ReportStatusDismissed, staff.ID, "", at).Return(false, nil)

		_, err := newService(reports).Dismiss(context.Background(), staff, 8, "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	})

	t.Run("members cannot moderate", func(t *testing.T) {
		_, err := newService(new(MockReportRepository)).Investigate(context.Background(), member, 5)
		assert.ErrorIs(t, err, apperrors.ErrStaffOnly)
	})
}
