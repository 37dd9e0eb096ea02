package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"openmart/internal/model"
	"openmart/internal/repository"
)

const (
	dashboardRecent = 5
	adminRecent     = 10
	adminCategories = 10
)

// UserDashboard summarizes a user's own marketplace activity.
type UserDashboard struct {
	ActiveListings      int64              `json:"active_listings"`
	SoldListings        int64              `json:"sold_listings"`
	TotalRevenue        decimal.Decimal    `json:"total_revenue"`
	RecentListings      []model.Listing    `json:"recent_listings"`
	RecentChats         []ThreadSummary    `json:"recent_chats"`
	SavedListings       []model.Listing    `json:"saved_listings"`
	UnreadMessagesCount int64              `json:"unread_messages_count"`
	Rating              model.SellerRating `json:"rating"`
}

// AdminDashboard summarizes the whole marketplace for staff.
type AdminDashboard struct {
	TotalUsers      int64                 `json:"total_users"`
	NewUsersToday   int64                 `json:"new_users_today"`
	TotalListings   int64                 `json:"total_listings"`
	ActiveListings  int64                 `json:"active_listings"`
	BoostedListings int64                 `json:"boosted_listings"`
	TotalChats      int64                 `json:"total_chats"`
	ActiveChats     int64                 `json:"active_chats"`
	TotalMessages   int64                 `json:"total_messages"`
	PendingReports  []model.Report        `json:"pending_reports"`
	RecentListings  []model.Listing       `json:"recent_listings"`
	TopCategories   []model.CategoryCount `json:"top_categories"`
}

// UserPage is one page of users.
type UserPage struct {
	Users      []model.User          `json:"users"`
	Pagination repository.Pagination `json:"pagination"`
}

// ListingPage is one page of listings.
type ListingPage struct {
	Listings   []model.Listing       `json:"listings"`
	Pagination repository.Pagination `json:"pagination"`
}

// DashboardService builds read-only projections.
type DashboardService interface {
	User(ctx context.Context, user *model.User) (*UserDashboard, error)
	Admin(ctx context.Context, actor *model.User) (*AdminDashboard, error)
	ManageUsers(ctx context.Context, actor *model.User, search string, page repository.Page) (*UserPage, error)
	ModerateListings(ctx context.Context, actor *model.User, status string, page repository.Page) (*ListingPage, error)
}

type dashboardService struct {
	users      repository.UserRepository
	listings   repository.ListingRepository
	categories repository.CategoryRepository
	chats      repository.ChatRepository
	reviews    repository.ReviewRepository
	reports    repository.ReportRepository
	chat       ChatService
	now        func() time.Time
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	users repository.UserRepository,
	listings repository.ListingRepository,
	categories repository.CategoryRepository,
	chats repository.ChatRepository,
	reviews repository.ReviewRepository,
	reports repository.ReportRepository,
	chat ChatService,
) DashboardService {
	return &dashboardService{
		users:      users,
		listings:   listings,
		categories: categories,
		chats:      chats,
		reviews:    reviews,
		reports:    reports,
		chat:       chat,
		now:        time.Now,
	}
}

func (s *dashboardService) User(ctx context.Context, user *model.User) (*UserDashboard, error) {
	var (
		d   UserDashboard
		err error
	)
	if d.ActiveListings, err = s.listings.CountLiveBySeller(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("count active listings: %w", err)
	}
	if d.SoldListings, err = s.listings.CountSoldBySeller(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("count sold listings: %w", err)
	}
	if d.TotalRevenue, err = s.listings.RevenueBySeller(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("revenue: %w", err)
	}
	if d.RecentListings, err = s.listings.BySeller(ctx, user.ID, nil, false, dashboardRecent); err != nil {
		return nil, fmt.Errorf("recent listings: %w", err)
	}
	chats, err := s.chat.List(ctx, user)
	if err != nil {
		return nil, err
	}
	if len(chats) > dashboardRecent {
		chats = chats[:dashboardRecent]
	}
	d.RecentChats = chats
	if d.SavedListings, err = s.listings.ListSaved(ctx, user.ID, dashboardRecent); err != nil {
		return nil, fmt.Errorf("saved listings: %w", err)
	}
	if d.UnreadMessagesCount, err = s.chats.TotalUnread(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("unread count: %w", err)
	}
	if d.Rating, err = s.reviews.Rating(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("rating: %w", err)
	}
	return &d, nil
}

func (s *dashboardService) Admin(ctx context.Context, actor *model.User) (*AdminDashboard, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var (
		d   AdminDashboard
		err error
	)
	if d.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if d.NewUsersToday, err = s.users.CountSince(ctx, startOfDay); err != nil {
		return nil, fmt.Errorf("count new users: %w", err)
	}
	if d.TotalListings, err = s.listings.CountAll(ctx); err != nil {
		return nil, fmt.Errorf("count listings: %w", err)
	}
	if d.ActiveListings, err = s.listings.CountLive(ctx); err != nil {
		return nil, fmt.Errorf("count live listings: %w", err)
	}
	if d.BoostedListings, err = s.listings.CountBoostActive(ctx, now); err != nil {
		return nil, fmt.Errorf("count boosted listings: %w", err)
	}
	if d.TotalChats, err = s.chats.CountThreads(ctx, false); err != nil {
		return nil, fmt.Errorf("count threads: %w", err)
	}
	if d.ActiveChats, err = s.chats.CountThreads(ctx, true); err != nil {
		return nil, fmt.Errorf("count active threads: %w", err)
	}
	if d.TotalMessages, err = s.chats.CountMessages(ctx); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	if d.PendingReports, _, err = s.reports.List(ctx, model.ReportStatusPending, repository.NewPage(1, adminRecent)); err != nil {
		return nil, fmt.Errorf("pending reports: %w", err)
	}
	if d.RecentListings, err = s.listings.Recent(ctx, false, adminRecent); err != nil {
		return nil, fmt.Errorf("recent listings: %w", err)
	}
	if d.TopCategories, err = s.categories.TopByListingCount(ctx, false, adminCategories); err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	return &d, nil
}

func (s *dashboardService) ManageUsers(ctx context.Context, actor *model.User, search string, page repository.Page) (*UserPage, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	users, total, err := s.users.List(ctx, search, page)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &UserPage{Users: users, Pagination: page.Meta(total)}, nil
}

func (s *dashboardService) ModerateListings(ctx context.Context, actor *model.User, status string, page repository.Page) (*ListingPage, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	listings, total, err := s.listings.ListForModeration(ctx, status, page)
	if err != nil {
		return nil, fmt.Errorf("moderate listings: %w", err)
	}
	return &ListingPage{Listings: listings, Pagination: page.Meta(total)}, nil
}
