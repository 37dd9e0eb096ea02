// Package testutil provides fixtures shared by repository, service and handler tests.
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"openmart/internal/db"
	"openmart/internal/model"
)

// NewDB opens a migrated in-memory SQLite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

// CreateUser inserts a user with an empty profile.
func CreateUser(t testing.TB, gormDB *gorm.DB, username string, staff bool) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		IsStaff:      staff,
	}
	require.NoError(t, gormDB.Create(user).Error)
	require.NoError(t, gormDB.Create(&model.UserProfile{UserID: user.ID, PreferredContact: model.ContactChat}).Error)
	return user
}

// CreateCategory inserts a category.
func CreateCategory(t testing.TB, gormDB *gorm.DB, name string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name, Icon: "📦"}
	require.NoError(t, gormDB.Create(category).Error)
	return category
}

// CreateListing inserts an active listing owned by seller.
func CreateListing(t testing.TB, gormDB *gorm.DB, seller *model.User, category *model.Category, title string, price string) *model.Listing {
	t.Helper()
	listing := &model.Listing{
		ID:          uuid.New(),
		SellerID:    seller.ID,
		Title:       title,
		Description: title + " in good shape",
		Price:       decimal.RequireFromString(price),
		Condition:   model.ConditionUsedGood,
		Location:    "Kyiv",
		IsActive:    true,
	}
	if category != nil {
		listing.CategoryID = &category.ID
	}
	require.NoError(t, gormDB.Omit("Seller", "Category", "Images").Create(listing).Error)
	return listing
}
