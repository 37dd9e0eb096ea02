package service

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"openmart/internal/model"
	"openmart/internal/repository"
)

// Each mock embeds its interface so a test only stubs the methods it drives.

type MockUserRepository struct {
	mock.Mock
	repository.UserRepository
}

func (m *MockUserRepository) CreateWithProfile(ctx context.Context, user *model.User, profile *model.UserProfile) error {
	args := m.Called(ctx, user, profile)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByVerificationToken(ctx context.Context, token uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) MarkEmailVerified(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockListingRepository struct {
	mock.Mock
	repository.ListingRepository
}

func (m *MockListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Listing), args.Error(1)
}

type MockChatRepository struct {
	mock.Mock
	repository.ChatRepository
}

func (m *MockChatRepository) FindThread(ctx context.Context, id uuid.UUID) (*model.ChatThread, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChatThread), args.Error(1)
}

func (m *MockChatRepository) GetOrCreateThread(ctx context.Context, listingID uuid.UUID, buyerID, sellerID uint) (*model.ChatThread, bool, error) {
	args := m.Called(ctx, listingID, buyerID, sellerID)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*model.ChatThread), args.Bool(1), args.Error(2)
}

func (m *MockChatRepository) CreateMessage(ctx context.Context, message *model.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockChatRepository) MessagesAfter(ctx context.Context, threadID uuid.UUID, afterID uint) ([]model.Message, error) {
	args := m.Called(ctx, threadID, afterID)
	return args.Get(0).([]model.Message), args.Error(1)
}

func (m *MockChatRepository) RecentMessages(ctx context.Context, threadID uuid.UUID, limit int) ([]model.Message, error) {
	args := m.Called(ctx, threadID, limit)
	return args.Get(0).([]model.Message), args.Error(1)
}

func (m *MockChatRepository) UnreadCount(ctx context.Context, threadID uuid.UUID, viewerID uint) (int64, error) {
	args := m.Called(ctx, threadID, viewerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChatRepository) IsBlockedEither(ctx context.Context, a, b uint) (bool, error) {
	args := m.Called(ctx, a, b)
	return args.Bool(0), args.Error(1)
}

func (m *MockChatRepository) Block(ctx context.Context, block *model.BlockedUser) error {
	args := m.Called(ctx, block)
	return args.Error(0)
}

func (m *MockChatRepository) Unblock(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	args := m.Called(ctx, blockerID, blockedID)
	return args.Bool(0), args.Error(1)
}

type MockReviewRepository struct {
	mock.Mock
	repository.ReviewRepository
}

func (m *MockReviewRepository) Create(ctx context.Context, review *model.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Exists(ctx context.Context, sellerID, buyerID uint, listingID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, sellerID, buyerID, listingID)
	return args.Bool(0), args.Error(1)
}

type MockReportRepository struct {
	mock.Mock
	repository.ReportRepository
}

func (m *MockReportRepository) Create(ctx context.Context, report *model.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) FindByID(ctx context.Context, id uint) (*model.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportRepository) Transition(ctx context.Context, id uint, from, to model.ReportStatus, resolverID uint, notes string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, from, to, resolverID, notes, at)
	return args.Bool(0), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, username string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, username, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uint, string, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uint), args.String(1), args.Error(2)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// fakeStore records uploads and returns predictable URLs.
type fakeStore struct {
	saved []string
}

func (f *fakeStore) Save(_ context.Context, folder string, header *multipart.FileHeader) (string, error) {
	url := "/media/" + folder + "/" + header.Filename
	f.saved = append(f.saved, url)
	return url, nil
}
