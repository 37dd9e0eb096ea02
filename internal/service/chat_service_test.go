package service

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "openmart/internal/errors"
	"openmart/internal/model"
	"openmart/internal/testutil"
)

func chatFixture() (buyer, seller *model.User, thread *model.ChatThread) {
	buyer = &model.User{ID: 1, Username: "buyer"}
	seller = &model.User{ID: 2, Username: "seller"}
	thread = &model.ChatThread{
		ID:       uuid.New(),
		BuyerID:  buyer.ID,
		SellerID: seller.ID,
		Buyer:    buyer,
		Seller:   seller,
		IsActive: true,
	}
	return buyer, seller, thread
}

func TestChatService_Send(t *testing.T) {
	buyer, seller, thread := chatFixture()
	outsider := &model.User{ID: 9, Username: "outsider"}

	tests := []struct {
		name          string
		user          *model.User
		content       string
		image         *multipart.FileHeader
		setupMock     func(*MockChatRepository)
		expectedError error
	}{
		{
			name:    "text message",
			user:    buyer,
			content: "  is it still available?  ",
			setupMock: func(m *MockChatRepository) {
				m.On("FindThread", mock.Anything, thread.ID).Return(thread, nil)
				m.On("IsBlockedEither", mock.Anything, uint(1), uint(2)).Return(false, nil)
				m.On("CreateMessage", mock.Anything, mock.MatchedBy(func(msg *model.Message) bool {
					return msg.Content == "is it still available?" && msg.SenderID == 1
				})).Return(nil)
			},
		},
		{
			name:  "image only",
			user:  buyer,
			image: &multipart.FileHeader{Filename: "bike.jpg"},
			setupMock: func(m *MockChatRepository) {
				m.On("FindThread", mock.Anything, thread.ID).Return(thread, nil)
				m.On("IsBlockedEither", mock.Anything, uint(1), uint(2)).Return(false, nil)
				m.On("CreateMessage", mock.Anything, mock.AnythingOfType("*model.Message")).Return(nil)
			},
		},
		{
			name:    "seller reply",
			user:    seller,
			content: "yes",
			setupMock: func(m *MockChatRepository) {
				m.On("FindThread", mock.Anything, thread.ID).Return(thread, nil)
				m.On("IsBlockedEither", mock.Anything, uint(2), uint(1)).Return(false, nil)
				m.On("CreateMessage", mock.Anything, mock.MatchedBy(func(msg *model.Message) bool {
					return msg.SenderID == 2
				})).Return(nil)
			},
		},
		{
			name:          "whitespace only is rejected before lookup",
			user:          buyer,
			content:       "   ",
			setupMock:     func(m *MockChatRepository) {},
			expectedError: apperrors.ErrEmptyMessage,
		},
		{
			name:    "non participant",
			user:    outsider,
			content: "hi",
			setupMock: func(m *MockChatRepository) {
				m.On("FindThread", mock.Anything, thread.ID).Return(thread, nil)
			},
			expectedError: apperrors.ErrThreadNotFound,
		},
		{
			name:    "blocked",
			user:    buyer,
			content: "hi",
			setupMock: func(m *MockChatRepository) {
				m.On("FindThread", mock.Anything, thread.ID).Return(thread, nil)
				m.On("IsBlockedEither", mock.Anything, uint(1), uint(2)).Return(true, nil)
			},
			expectedError: apperrors.ErrBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chats := new(MockChatRepository)
			tt.setupMock(chats)
			store := &fakeStore{}

			service := NewChatService(chats, new(MockListingRepository), new(MockUserRepository), store)
			msg, err := service.Send(context.Background(), tt.user, thread.ID, tt.content, tt.image)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, msg)
				chats.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.user, msg.Sender)
				if tt.image != nil {
					assert.Equal(t, "/media/chat_images/bike.jpg", msg.ImageURL)
				}
			}
			chats.AssertExpectations(t)
		})
	}
}

func TestChatService_Start(t *testing.T) {
	buyer, seller, thread := chatFixture()
	listing := &model.Listing{ID: uuid.New(), SellerID: seller.ID, IsActive: true}

	t.Run("creates once", func(t *testing.T) {
		chats := new(MockChatRepository)
		listings := new(MockListingRepository)
		listings.On("FindByID", mock.Anything, listing.ID).Return(listing, nil)
		chats.On("GetOrCreateThread", mock.Anything, listing.ID, buyer.ID, seller.ID).Return(thread, true, nil).Once()
		chats.On("GetOrCreateThread", mock.Anything, listing.ID, buyer.ID, seller.ID).Return(thread, false, nil).Once()

		service := NewChatService(chats, listings, new(MockUserRepository), &fakeStore{})
		first, created, err := service.Start(context.Background(), buyer, listing.ID)
		require.NoError(t, err)
		assert.True(t, created)

		second, created, err := service.Start(context.Background(), buyer, listing.ID)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("seller cannot chat with self", func(t *testing.T) {
		listings := new(MockListingRepository)
		listings.On("FindByID", mock.Anything, listing.ID).Return(listing, nil)

		service := NewChatService(new(MockChatRepository), listings, new(MockUserRepository), &fakeStore{})
		_, _, err := service.Start(context.Background(), seller, listing.ID)
		assert.ErrorIs(t, err, apperrors.ErrSelfChat)
	})

	t.Run("inactive listing", func(t *testing.T) {
		inactive := &model.Listing{ID: uuid.New(), SellerID: seller.ID}
		listings := new(MockListingRepository)
		listings.On("FindByID", mock.Anything, inactive.ID).Return(inactive, nil)

		service := NewChatService(new(MockChatRepository), listings, new(MockUserRepository), &fakeStore{})
		_, _, err := service.Start(context.Background(), buyer, inactive.ID)
		assert.ErrorIs(t, err, apperrors.ErrListingNotFound)
	})
}

func TestChatService_Poll(t *testing.T) {
	buyer, _, thread := chatFixture()

	t.Run("with cursor", func(t *testing.T) {
		chats := new(MockChatRepository)
		chats.On("FindThread", mock.Anything, thread.ID).Return(thread, nil)
		chats.On("MessagesAfter", mock.Anything, thread.ID, uint(41)).Return([]model.Message{{ID: 42}, {ID: 43}}, nil)
		chats.On("UnreadCount", mock.Anything, thread.ID, buyer.ID).Return(int64(2), nil)

		service := NewChatService(chats, new(MockListingRepository), new(MockUserRepository), &fakeStore{})
		cursor := uint(41)
		result, err := service.Poll(context.Background(), buyer, thread.ID, &cursor)
		require.NoError(t, err)
		assert.Len(t, result.Messages, 2)
		assert.Equal(t, int64(2), result.UnreadCount)
		chats.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("without cursor", func(t *testing.T) {
		chats := new(MockChatRepository)
		chats.On("FindThread", mock.Anything, thread.ID).Return(thread, nil)
		chats.On("RecentMessages", mock.Anything, thread.ID, pollWindow).Return([]model.Message{{ID: 3}, {ID: 2}}, nil)
		chats.On("UnreadCount", mock.Anything, thread.ID, buyer.ID).Return(int64(0), nil)

		service := NewChatService(chats, new(MockListingRepository), new(MockUserRepository), &fakeStore{})
		result, err := service.Poll(context.Background(), buyer, thread.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, uint(3), result.Messages[0].ID)
		assert.Zero(t, result.UnreadCount)
	})
}

func TestChatService_Block(t *testing.T) {
	buyer, seller, _ := chatFixture()

	t.Run("self", func(t *testing.T) {
		service := NewChatService(new(MockChatRepository), new(MockListingRepository), new(MockUserRepository), &fakeStore{})
		assert.ErrorIs(t, service.Block(context.Background(), buyer, buyer.ID, ""), apperrors.ErrSelfBlock)
	})

	t.Run("already blocked", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByID", mock.Anything, seller.ID).Return(seller, nil)
		chats := new(MockChatRepository)
		chats.On("Block", mock.Anything, mock.AnythingOfType("*model.BlockedUser")).Return(apperrors.ErrAlreadyBlocked)

		service := NewChatService(chats, new(MockListingRepository), users, &fakeStore{})
		assert.ErrorIs(t, service.Block(context.Background(), buyer, seller.ID, "spam"), apperrors.ErrAlreadyBlocked)
	})

	t.Run("unblock when not blocked", func(t *testing.T) {
		chats := new(MockChatRepository)
		chats.On("Unblock", mock.Anything, buyer.ID, seller.ID).Return(false, nil)

		service := NewChatService(chats, new(MockListingRepository), new(MockUserRepository), &fakeStore{})
		assert.ErrorIs(t, service.Unblock(context.Background(), buyer, seller.ID), apperrors.ErrNotBlocked)
	})
}

func TestChatService_List(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()
	seller := testutil.CreateUser(t, m.db, "seller", false)
	buyer := testutil.CreateUser(t, m.db, "buyer", false)

	listing, err := m.listings.Create(ctx, seller, ListingInput{
		Title:    "Camera",
		Price:    decimal.RequireFromString("120.00"),
		Location: "Odesa",
	}, headers("front.jpg", "back.jpg"))
	require.NoError(t, err)

	thread, _, err := m.chat.Start(ctx, buyer, listing.ID)
	require.NoError(t, err)
	_, err = m.chat.Send(ctx, buyer, thread.ID, "hi", nil)
	require.NoError(t, err)

	summaries, err := m.chat.List(ctx, seller)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "/media/listing_images/front.jpg", summaries[0].ListingImage)
	assert.Equal(t, "buyer", summaries[0].OtherUser.Username)
	assert.Equal(t, int64(1), summaries[0].UnreadCount)

	polled, err := m.chat.Poll(ctx, seller, thread.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), polled.UnreadCount)

	summaries, err = m.chat.List(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "seller", summaries[0].OtherUser.Username)
	assert.False(t, summaries[0].HasUnread)
}
