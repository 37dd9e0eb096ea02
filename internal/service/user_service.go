package service

import (
	"context"
	"fmt"
	"mime/multipart"

	apperrors "openmart/internal/errors"
	"openmart/internal/model"
	"openmart/internal/repository"
	"openmart/internal/storage"
)

const sellerPageReviews = 10

// ProfileView is the signed-in user's own profile with derived values.
type ProfileView struct {
	User                *model.User        `json:"user"`
	Profile             *model.UserProfile `json:"profile"`
	Rating              model.SellerRating `json:"rating"`
	UnreadMessagesCount int64              `json:"unread_messages_count"`
}

// SellerPage is the public view of a seller.
type SellerPage struct {
	User     *model.User        `json:"user"`
	Profile  *model.UserProfile `json:"profile"`
	Rating   model.SellerRating `json:"rating"`
	Listings []model.Listing    `json:"listings"`
	Reviews  []model.Review     `json:"reviews"`
}

// ProfileUpdate carries editable user and profile fields.
type ProfileUpdate struct {
	Email            string
	FirstName        string
	LastName         string
	PhoneNumber      string
	Location         string
	Bio              string
	Website          string
	Facebook         string
	Instagram        string
	Twitter          string
	PreferredContact model.ContactPreference
}

// UserService exposes profile operations.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	GetProfile(ctx context.Context, userID uint) (*ProfileView, error)
	UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate, image *multipart.FileHeader) (*ProfileView, error)
	GetSellerPage(ctx context.Context, userID uint) (*SellerPage, error)
}

type userService struct {
	users    repository.UserRepository
	listings repository.ListingRepository
	reviews  repository.ReviewRepository
	chats    repository.ChatRepository
	store    storage.ImageStore
}

// NewUserService builds a UserService.
func NewUserService(
	users repository.UserRepository,
	listings repository.ListingRepository,
	reviews repository.ReviewRepository,
	chats repository.ChatRepository,
	store storage.ImageStore,
) UserService {
	return &userService{
		users:    users,
		listings: listings,
		reviews:  reviews,
		chats:    chats,
		store:    store,
	}
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, apperrors.ErrUserNotFound, "find user")
	}
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID uint) (*ProfileView, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.users.FindProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	rating, err := s.reviews.Rating(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("seller rating: %w", err)
	}
	unread, err := s.chats.TotalUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("unread count: %w", err)
	}
	user.Profile = nil
	return &ProfileView{User: user, Profile: profile, Rating: rating, UnreadMessagesCount: unread}, nil
}

// UpdateProfile saves user and profile fields together. An empty
// PreferredContact keeps the current value.
func (s *userService) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate, image *multipart.FileHeader) (*ProfileView, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.users.FindProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}

	if image != nil {
		url, err := s.store.Save(ctx, storage.FolderProfiles, image)
		if err != nil {
			return nil, err
		}
		user.ProfileImage = url
	}

	if in.Email != "" {
		user.Email = in.Email
	}
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.PhoneNumber = in.PhoneNumber
	user.Location = in.Location

	profile.Bio = in.Bio
	profile.Website = in.Website
	profile.Facebook = in.Facebook
	profile.Instagram = in.Instagram
	profile.Twitter = in.Twitter
	if in.PreferredContact != "" {
		profile.PreferredContact = in.PreferredContact
	}

	user.Profile = nil
	if err := s.users.UpdateWithProfile(ctx, user, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetProfile(ctx, userID)
}

func (s *userService) GetSellerPage(ctx context.Context, userID uint) (*SellerPage, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.users.FindProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	rating, err := s.reviews.Rating(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("seller rating: %w", err)
	}
	listings, err := s.listings.BySeller(ctx, userID, nil, true, 0)
	if err != nil {
		return nil, fmt.Errorf("seller listings: %w", err)
	}
	reviews, err := s.reviews.ListBySeller(ctx, userID, sellerPageReviews)
	if err != nil {
		return nil, fmt.Errorf("seller reviews: %w", err)
	}
	user.Profile = nil
	return &SellerPage{User: user, Profile: profile, Rating: rating, Listings: listings, Reviews: reviews}, nil
}
