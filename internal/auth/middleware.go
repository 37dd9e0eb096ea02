package auth

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	apperrors "openmart/internal/errors"
	"openmart/internal/model"
)

const (
	// TokenContextKey is where echo-jwt stores the parsed token.
	TokenContextKey = "user"
	// UserContextKey is where LoadUser stores the authenticated *model.User.
	UserContextKey = "current_user"
	// AccessTokenCookie is the cookie browser clients carry the access token in.
	AccessTokenCookie = "access_token"
)

// UserLoader loads the account behind a token.
type UserLoader interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// NewClaims is used by echo-jwt to decode tokens into Claims.
func NewClaims(c echo.Context) jwt.Claims {
	return new(Claims)
}

// ClaimsFromContext returns the claims of a validated token, if any.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	token, ok := c.Get(TokenContextKey).(*jwt.Token)
	if !ok || token == nil || !token.Valid {
		return nil, false
	}
	claims, ok := token.Claims.(*Claims)
	return claims, ok
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(UserContextKey).(*model.User)
	return user
}

// LoadUser resolves validated claims into a user. With required set, requests
// without a usable token are rejected; otherwise they continue anonymously.
func LoadUser(users UserLoader, tokens TokenStoreInterface, required bool) echo.MiddlewareFunc {
	unauthorized := echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
		Error: "authentication required",
		Code:  "UNAUTHORIZED",
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFromContext(c)
			if !ok || !claims.IsAccess() {
				if required {
					return unauthorized
				}
				return next(c)
			}
			ctx := c.Request().Context()
			if claims.ID != "" {
				if revoked, _ := tokens.IsAccessTokenBlacklisted(ctx, claims.ID); revoked {
					if required {
						return unauthorized
					}
					return next(c)
				}
			}
			user, err := users.FindByID(ctx, claims.UserID)
			if err != nil {
				if required {
					return unauthorized
				}
				return next(c)
			}
			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// RequireStaff rejects requests whose user cannot moderate.
func RequireStaff() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentUser(c).CanModerate() {
				return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
					Error: apperrors.ErrStaffOnly.Error(),
					Code:  "STAFF_ONLY",
				})
			}
			return next(c)
		}
	}
}
