package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "openmart/internal/errors"
	"openmart/internal/model"
	"openmart/internal/repository"
	"openmart/internal/storage"
)

const (
	homeFeatured     = 8
	homeRecent       = 12
	homeBoosted      = 6
	homeCategories   = 8
	detailSimilar    = 4
	detailSellerMore = 3
	detailReviews    = 5
)

// ListingInput carries the editable fields of a listing.
type ListingInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Negotiable  bool
	CategoryID  *uint
	Condition   model.Condition
	Location    string
}

// ListingDetail is a listing page with everything shown around it.
type ListingDetail struct {
	Listing        *model.Listing     `json:"listing"`
	IsSaved        bool               `json:"is_saved"`
	IsOwner        bool               `json:"is_owner"`
	IsBoostActive  bool               `json:"is_boost_active"`
	ThreadID       *uuid.UUID         `json:"thread_id,omitempty"`
	Similar        []model.Listing    `json:"similar_listings"`
	SellerListings []model.Listing    `json:"seller_listings"`
	SellerRating   model.SellerRating `json:"seller_rating"`
	SellerReviews  []model.Review     `json:"seller_reviews"`
}

// BrowseResult is one page of browse results.
type BrowseResult struct {
	Listings   []model.Listing       `json:"listings"`
	Pagination repository.Pagination `json:"pagination"`
	Categories []model.Category      `json:"categories"`
	Conditions []model.Condition     `json:"conditions"`
}

// HomePage is the landing page content.
type HomePage struct {
	Featured   []model.Listing       `json:"featured_listings"`
	Recent     []model.Listing       `json:"recent_listings"`
	Boosted    []model.Listing       `json:"boosted_listings"`
	Categories []model.CategoryCount `json:"categories"`
}

// SaveResult is the outcome of a save toggle.
type SaveResult struct {
	Saved bool `json:"saved"`
	Saves int  `json:"saves"`
}

// ListingService handles the listing lifecycle.
type ListingService interface {
	Create(ctx context.Context, seller *model.User, in ListingInput, images []*multipart.FileHeader) (*model.Listing, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, in ListingInput) (*model.Listing, error)
	Delete(ctx context.Context, actor *model.User, id uuid.UUID) error
	MarkSold(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Listing, error)
	ToggleSave(ctx context.Context, user *model.User, id uuid.UUID) (*SaveResult, error)
	ApproveBoost(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Listing, error)
	AddImage(ctx context.Context, actor *model.User, id uuid.UUID, image *multipart.FileHeader, primary bool) (*model.ListingImage, error)
	SetPrimaryImage(ctx context.Context, actor *model.User, id uuid.UUID, imageID uint) error
	Detail(ctx context.Context, viewer *model.User, id uuid.UUID) (*ListingDetail, error)
	Browse(ctx context.Context, filter repository.ListingFilter, page repository.Page) (*BrowseResult, error)
	Home(ctx context.Context) (*HomePage, error)
	Saved(ctx context.Context, user *model.User) ([]model.Listing, error)
}

type listingService struct {
	listings   repository.ListingRepository
	categories repository.CategoryRepository
	chats      repository.ChatRepository
	reviews    repository.ReviewRepository
	catalog    CategoryService
	store      storage.ImageStore
	now        func() time.Time
}

// NewListingService creates a new listing service.
func NewListingService(
	listings repository.ListingRepository,
	categories repository.CategoryRepository,
	chats repository.ChatRepository,
	reviews repository.ReviewRepository,
	catalog CategoryService,
	store storage.ImageStore,
) ListingService {
	return &listingService{
		listings:   listings,
		categories: categories,
		chats:      chats,
		reviews:    reviews,
		catalog:    catalog,
		store:      store,
		now:        time.Now,
	}
}

func validCondition(c model.Condition) bool {
	for _, known := range model.Conditions {
		if c == known {
			return true
		}
	}
	return false
}

func (s *listingService) checkInput(ctx context.Context, in *ListingInput) error {
	if in.Price.IsNegative() {
		return apperrors.ErrInvalidPrice
	}
	if in.Condition == "" {
		in.Condition = model.ConditionUsedGood
	}
	if !validCondition(in.Condition) {
		return apperrors.ErrInvalidCondition
	}
	if in.CategoryID != nil {
		if _, err := s.catalog.Get(ctx, *in.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

// Create stores a listing owned by seller. Only the first MaxListingImages
// uploads are kept and the first one becomes primary.
func (s *listingService) Create(ctx context.Context, seller *model.User, in ListingInput, images []*multipart.FileHeader) (*model.Listing, error) {
	if err := s.checkInput(ctx, &in); err != nil {
		return nil, err
	}
	if len(images) > model.MaxListingImages {
		images = images[:model.MaxListingImages]
	}

	stored := make([]model.ListingImage, 0, len(images))
	for _, header := range images {
		url, err := s.store.Save(ctx, storage.FolderListings, header)
		if err != nil {
			return nil, err
		}
		stored = append(stored, model.ListingImage{URL: url})
	}

	listing := &model.Listing{
		SellerID:    seller.ID,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Negotiable:  in.Negotiable,
		CategoryID:  in.CategoryID,
		Condition:   in.Condition,
		Location:    in.Location,
		IsActive:    true,
	}
	if err := s.listings.Create(ctx, listing, stored); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	slog.InfoContext(ctx, "listing created", "listing_id", listing.ID, "seller_id", seller.ID, "images", len(stored))
	return listing, nil
}

// owned loads a listing and checks that actor is its seller.
func (s *listingService) owned(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Listing, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, apperrors.ErrListingNotFound, "find listing")
	}
	if actor == nil || listing.SellerID != actor.ID {
		return nil, apperrors.ErrNotOwner
	}
	return listing, nil
}

func (s *listingService) Update(ctx context.Context, actor *model.User, id uuid.UUID, in ListingInput) (*model.Listing, error) {
	listing, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkInput(ctx, &in); err != nil {
		return nil, err
	}

	listing.Title = in.Title
	listing.Description = in.Description
	listing.Price = in.Price
	listing.Negotiable = in.Negotiable
	listing.CategoryID = in.CategoryID
	listing.Condition = in.Condition
	listing.Location = in.Location

	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}
	return s.reload(ctx, id)
}

// Delete deactivates the listing. The row is kept.
func (s *listingService) Delete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.listings.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("deactivate listing: %w", err)
	}
	return nil
}

func (s *listingService) MarkSold(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Listing, error) {
	listing, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.listings.MarkSold(ctx, id, listing.SellerID); err != nil {
		return nil, fmt.Errorf("mark sold: %w", err)
	}
	return s.reload(ctx, id)
}

func (s *listingService) ToggleSave(ctx context.Context, user *model.User, id uuid.UUID) (*SaveResult, error) {
	if _, err := s.listings.FindByID(ctx, id); err != nil {
		return nil, translate(err, apperrors.ErrListingNotFound, "find listing")
	}
	saved, err := s.listings.ToggleSave(ctx, user.ID, id)
	if err != nil {
		return nil, fmt.Errorf("toggle save: %w", err)
	}
	listing, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SaveResult{Saved: saved, Saves: listing.Saves}, nil
}

// ApproveBoost starts a fresh boost window of BoostDuration from now.
func (s *listingService) ApproveBoost(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Listing, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if _, err := s.listings.FindByID(ctx, id); err != nil {
		return nil, translate(err, apperrors.ErrListingNotFound, "find listing")
	}
	until := s.now().Add(model.BoostDuration)
	if err := s.listings.ApproveBoost(ctx, id, until); err != nil {
		return nil, fmt.Errorf("approve boost: %w", err)
	}
	slog.InfoContext(ctx, "boost approved", "listing_id", id, "staff_id", actor.ID, "until", until)
	return s.reload(ctx, id)
}

func (s *listingService) AddImage(ctx context.Context, actor *model.User, id uuid.UUID, header *multipart.FileHeader, primary bool) (*model.ListingImage, error) {
	listing, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if len(listing.Images) >= model.MaxListingImages {
		return nil, apperrors.ErrTooManyImages
	}
	url, err := s.store.Save(ctx, storage.FolderListings, header)
	if err != nil {
		return nil, err
	}
	image := &model.ListingImage{ListingID: id, URL: url, IsPrimary: primary}
	if err := s.listings.AddImage(ctx, image); err != nil {
		if errors.Is(err, apperrors.ErrTooManyImages) {
			return nil, err
		}
		return nil, fmt.Errorf("add image: %w", err)
	}
	return image, nil
}

func (s *listingService) SetPrimaryImage(ctx context.Context, actor *model.User, id uuid.UUID, imageID uint) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.listings.SetPrimaryImage(ctx, id, imageID); err != nil {
		return translate(err, apperrors.ErrImageNotFound, "set primary image")
	}
	return nil
}

// Detail returns an active listing and counts the view. viewer may be nil.
func (s *listingService) Detail(ctx context.Context, viewer *model.User, id uuid.UUID) (*ListingDetail, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, apperrors.ErrListingNotFound, "find listing")
	}
	if !listing.IsActive {
		return nil, apperrors.ErrListingNotFound
	}

	if err := s.listings.IncrementViews(ctx, id); err != nil {
		return nil, fmt.Errorf("increment views: %w", err)
	}
	listing.Views++

	detail := &ListingDetail{
		Listing:       listing,
		IsBoostActive: listing.IsBoostActive(s.now()),
	}

	if viewer != nil {
		detail.IsOwner = viewer.ID == listing.SellerID
		if detail.IsSaved, err = s.listings.IsSaved(ctx, viewer.ID, id); err != nil {
			return nil, fmt.Errorf("saved state: %w", err)
		}
		thread, err := s.chats.FindThreadFor(ctx, id, viewer.ID)
		switch {
		case err == nil:
			detail.ThreadID = &thread.ID
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("find thread: %w", err)
		}
	}

	if detail.Similar, err = s.listings.Similar(ctx, listing, detailSimilar); err != nil {
		return nil, fmt.Errorf("similar listings: %w", err)
	}
	if detail.SellerListings, err = s.listings.BySeller(ctx, listing.SellerID, &listing.ID, true, detailSellerMore); err != nil {
		return nil, fmt.Errorf("seller listings: %w", err)
	}
	if detail.SellerRating, err = s.reviews.Rating(ctx, listing.SellerID); err != nil {
		return nil, fmt.Errorf("seller rating: %w", err)
	}
	if detail.SellerReviews, err = s.reviews.ListBySeller(ctx, listing.SellerID, detailReviews); err != nil {
		return nil, fmt.Errorf("seller reviews: %w", err)
	}
	return detail, nil
}

func (s *listingService) Browse(ctx context.Context, filter repository.ListingFilter, page repository.Page) (*BrowseResult, error) {
	if filter.Condition != "" && !validCondition(filter.Condition) {
		return nil, apperrors.ErrInvalidCondition
	}
	listings, total, err := s.listings.Search(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	categories, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	return &BrowseResult{
		Listings:   listings,
		Pagination: page.Meta(total),
		Categories: categories,
		Conditions: model.Conditions,
	}, nil
}

func (s *listingService) Home(ctx context.Context) (*HomePage, error) {
	var (
		home HomePage
		err  error
	)
	if home.Featured, err = s.listings.Featured(ctx, homeFeatured); err != nil {
		return nil, fmt.Errorf("featured listings: %w", err)
	}
	if home.Recent, err = s.listings.Recent(ctx, true, homeRecent); err != nil {
		return nil, fmt.Errorf("recent listings: %w", err)
	}
	if home.Boosted, err = s.listings.BoostActive(ctx, s.now(), homeBoosted); err != nil {
		return nil, fmt.Errorf("boosted listings: %w", err)
	}
	if home.Categories, err = s.categories.TopByListingCount(ctx, true, homeCategories); err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	return &home, nil
}

func (s *listingService) Saved(ctx context.Context, user *model.User) ([]model.Listing, error) {
	listings, err := s.listings.ListSaved(ctx, user.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("saved listings: %w", err)
	}
	return listings, nil
}

func (s *listingService) reload(ctx context.Context, id uuid.UUID) (*model.Listing, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, apperrors.ErrListingNotFound, "reload listing")
	}
	return listing, nil
}
