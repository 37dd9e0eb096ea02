package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"openmart/internal/model"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	access, err := svc.GenerateAccessToken(7, "alice")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, TokenAccess, claims.Use)
	assert.NotEmpty(t, claims.ID)

	tokenID, refresh, err := svc.GenerateRefreshToken(7, "alice")
	require.NoError(t, err)
	claims, err = svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, tokenID, claims.ID)
	assert.Equal(t, TokenRefresh, claims.Use)
}

func TestJWTService_TokenUseIsEnforced(t *testing.T) {
	svc := NewJWTService("test-secret")

	access, err := svc.GenerateAccessToken(7, "alice")
	require.NoError(t, err)
	_, refresh, err := svc.GenerateRefreshToken(7, "alice")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrWrongTokenUse)
	_, err = svc.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrWrongTokenUse)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	token, err := NewJWTService("other").GenerateAccessToken(1, "bob")
	require.NoError(t, err)

	_, err = NewJWTService("test-secret").ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	svc := NewJWTService("test-secret")
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := svc.GenerateAccessToken(1, "bob")
	require.NoError(t, err)

	_, err = NewJWTService("test-secret").ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestTokenStore_NilCacheFailsSafe(t *testing.T) {
	store := NewTokenStore(nil)
	ctx := context.Background()

	require.NoError(t, store.StoreRefreshToken(ctx, "id", 1, "alice", time.Minute))
	_, _, err := store.GetRefreshToken(ctx, "id")
	assert.Error(t, err)

	revoked, err := store.IsAccessTokenBlacklisted(ctx, "id")
	require.NoError(t, err)
	assert.False(t, revoked)
}

type stubUsers map[uint]*model.User

func (s stubUsers) FindByID(ctx context.Context, id uint) (*model.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func withClaims(c echo.Context, claims *Claims) {
	c.Set(TokenContextKey, &jwt.Token{Claims: claims, Valid: true})
}

func TestLoadUser(t *testing.T) {
	users := stubUsers{1: {ID: 1, Username: "alice"}}
	store := NewTokenStore(nil)
	e := echo.New()

	var seen *model.User
	next := func(c echo.Context) error {
		seen = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	}

	t.Run("optional anonymous passes through", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		seen = &model.User{}
		require.NoError(t, LoadUser(users, store, false)(next)(c))
		assert.Nil(t, seen)
	})

	t.Run("required anonymous rejected", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		err := LoadUser(users, store, true)(next)(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("known user loaded", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		withClaims(c, &Claims{UserID: 1, Use: TokenAccess})
		require.NoError(t, LoadUser(users, store, true)(next)(c))
		require.NotNil(t, seen)
		assert.Equal(t, "alice", seen.Username)
	})

	t.Run("refresh claims do not authenticate", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		withClaims(c, &Claims{UserID: 1, Use: TokenRefresh})
		err := LoadUser(users, store, true)(next)(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusUnauthorized, he.Code)

		seen = &model.User{}
		require.NoError(t, LoadUser(users, store, false)(next)(c))
		assert.Nil(t, seen)
	})

	t.Run("unknown user rejected when required", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		withClaims(c, &Claims{UserID: 99, Use: TokenAccess})
		assert.Error(t, LoadUser(users, store, true)(next)(c))
	})
}

func TestRequireStaff(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(UserContextKey, &model.User{ID: 1})
	err := RequireStaff()(ok)(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusForbidden, he.Code)

	rec := httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(UserContextKey, &model.User{ID: 2, IsStaff: true})
	require.NoError(t, RequireStaff()(ok)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
