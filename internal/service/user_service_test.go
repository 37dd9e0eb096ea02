package service

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "openmart/internal/errors"
	"openmart/internal/model"
	"openmart/internal/repository"
	"openmart/internal/testutil"
)

func TestUserService_Profile(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()
	users := repository.NewUserRepository(m.db)
	svc := NewUserService(users, repository.NewListingRepository(m.db), repository.NewReviewRepository(m.db),
		repository.NewChatRepository(m.db), m.store)

	alice := testutil.CreateUser(t, m.db, "alice", false)

	view, err := svc.UpdateProfile(ctx, alice.ID, ProfileUpdate{
		FirstName:        "Alice",
		Location:         "Odesa",
		Bio:              "Vintage cameras",
		PreferredContact: model.ContactPhone,
	}, &multipart.FileHeader{Filename: "me.png"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", view.User.FirstName)
	assert.Equal(t, "/media/profile_images/me.png", view.User.ProfileImage)
	assert.Equal(t, "Vintage cameras", view.Profile.Bio)
	assert.Equal(t, model.ContactPhone, view.Profile.PreferredContact)
	assert.Equal(t, "alice@example.com", view.User.Email)

	// empty preferred contact keeps the stored value
	view, err = svc.UpdateProfile(ctx, alice.ID, ProfileUpdate{Bio: "Film too"}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.ContactPhone, view.Profile.PreferredContact)

	_, err = svc.GetProfile(ctx, 4242)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_SellerPage(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()
	reviews := repository.NewReviewRepository(m.db)
	svc := NewUserService(repository.NewUserRepository(m.db), repository.NewListingRepository(m.db), reviews,
		repository.NewChatRepository(m.db), m.store)

	seller := testutil.CreateUser(t, m.db, "seller", false)
	buyer := testutil.CreateUser(t, m.db, "buyer", false)
	other := testutil.CreateUser(t, m.db, "other", false)
	testutil.CreateListing(t, m.db, seller, nil, "Tent", "60.00")
	sold := testutil.CreateListing(t, m.db, seller, nil, "Stove", "25.00")
	_, err := m.listings.MarkSold(ctx, seller, sold.ID)
	require.NoError(t, err)

	reviewSvc := NewReviewService(reviews, repository.NewUserRepository(m.db), repository.NewListingRepository(m.db))
	_, err = reviewSvc.Create(ctx, buyer, seller.ID, ReviewInput{Rating: 5, Comment: "great"})
	require.NoError(t, err)
	_, err = reviewSvc.Create(ctx, other, seller.ID, ReviewInput{Rating: 4, Comment: "ok"})
	require.NoError(t, err)

	page, err := svc.GetSellerPage(ctx, seller.ID)
	require.NoError(t, err)
	assert.Len(t, page.Listings, 1)
	assert.Len(t, page.Reviews, 2)
	assert.InDelta(t, 4.5, page.Rating.Average, 0.001)
	assert.Equal(t, int64(2), page.Rating.Count)
}
