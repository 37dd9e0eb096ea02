package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	apperrors "openmart/internal/errors"
	"openmart/internal/model"
	"openmart/internal/repository"
)

// ReviewInput carries a buyer's review of a seller.
type ReviewInput struct {
	Rating             int
	Comment            string
	ListingID          *uuid.UUID
	IsVerifiedPurchase bool
}

// SellerReviews is a seller's reviews with their aggregate.
type SellerReviews struct {
	Rating  model.SellerRating `json:"rating"`
	Reviews []model.Review     `json:"reviews"`
}

// ReviewService handles seller reviews.
type ReviewService interface {
	Create(ctx context.Context, buyer *model.User, sellerID uint, in ReviewInput) (*model.Review, error)
	List(ctx context.Context, sellerID uint) (*SellerReviews, error)
}

type reviewService struct {
	reviews  repository.ReviewRepository
	users    repository.UserRepository
	listings repository.ListingRepository
}

// NewReviewService creates a new review service.
func NewReviewService(reviews repository.ReviewRepository, users repository.UserRepository, listings repository.ListingRepository) ReviewService {
	return &reviewService{reviews: reviews, users: users, listings: listings}
}

func (s *reviewService) Create(ctx context.Context, buyer *model.User, sellerID uint, in ReviewInput) (*model.Review, error) {
	if buyer.ID == sellerID {
		return nil, apperrors.ErrSelfReview
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperrors.ErrInvalidRating
	}
	if _, err := s.users.FindByID(ctx, sellerID); err != nil {
		return nil, translate(err, apperrors.ErrUserNotFound, "find seller")
	}
	if in.ListingID != nil {
		listing, err := s.listings.FindByID(ctx, *in.ListingID)
		if err != nil {
			return nil, translate(err, apperrors.ErrListingNotFound, "find listing")
		}
		if listing.SellerID != sellerID {
			return nil, apperrors.ErrListingNotFound
		}
	}

	exists, err := s.reviews.Exists(ctx, sellerID, buyer.ID, in.ListingID)
	if err != nil {
		return nil, fmt.Errorf("check review: %w", err)
	}
	if exists {
		return nil, apperrors.ErrAlreadyReviewed
	}

	review := &model.Review{
		SellerID:           sellerID,
		BuyerID:            buyer.ID,
		ListingID:          in.ListingID,
		Rating:             in.Rating,
		Comment:            in.Comment,
		IsVerifiedPurchase: in.IsVerifiedPurchase,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	review.Buyer = buyer
	return review, nil
}

func (s *reviewService) List(ctx context.Context, sellerID uint) (*SellerReviews, error) {
	if _, err := s.users.FindByID(ctx, sellerID); err != nil {
		return nil, translate(err, apperrors.ErrUserNotFound, "find seller")
	}
	rating, err := s.reviews.Rating(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("seller rating: %w", err)
	}
	reviews, err := s.reviews.ListBySeller(ctx, sellerID, 0)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return &SellerReviews{Rating: rating, Reviews: reviews}, nil
}
