package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// AccessTokenExpiry is how long a bearer token authenticates requests.
	AccessTokenExpiry = 15 * time.Minute
	// RefreshTokenExpiry is how long a refresh token can mint access tokens.
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

// TokenUse separates access tokens from refresh tokens signed with the same key.
type TokenUse string

const (
	TokenAccess  TokenUse = "access"
	TokenRefresh TokenUse = "refresh"
)

// ErrWrongTokenUse is returned when a valid token is presented for the other purpose.
var ErrWrongTokenUse = errors.New("token used for the wrong purpose")

// Claims carries the marketplace account behind a token.
type Claims struct {
	UserID   uint     `json:"user_id"`
	Username string   `json:"username"`
	Use      TokenUse `json:"token_use"`
	jwt.RegisteredClaims
}

// IsAccess reports whether the claims may authenticate an API request.
func (c *Claims) IsAccess() bool {
	return c != nil && c.Use == TokenAccess
}

// JWTService signs and parses HS256 tokens.
type JWTService struct {
	secret []byte
	now    func() time.Time
}

// NewJWTService creates a JWT service signing with secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{secret: []byte(secret), now: time.Now}
}

// Secret returns the signing key, shared with the echo-jwt middleware.
func (s *JWTService) Secret() []byte {
	return s.secret
}

// GenerateAccessToken issues a short-lived bearer token.
func (s *JWTService) GenerateAccessToken(userID uint, username string) (string, error) {
	_, token, err := s.issue(userID, username, TokenAccess, AccessTokenExpiry)
	return token, err
}

// GenerateRefreshToken issues a refresh token. Its id is the key the token
// store keeps it under.
func (s *JWTService) GenerateRefreshToken(userID uint, username string) (tokenID string, token string, err error) {
	return s.issue(userID, username, TokenRefresh, RefreshTokenExpiry)
}

// ValidateAccessToken parses a bearer token, rejecting refresh tokens.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, TokenAccess)
}

// ValidateRefreshToken parses a refresh token, rejecting access tokens and
// tokens without an id.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	claims, err := s.validate(tokenString, TokenRefresh)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, errors.New("refresh token has no id")
	}
	return claims, nil
}

func (s *JWTService) issue(userID uint, username string, use TokenUse, ttl time.Duration) (string, string, error) {
	now := s.now()
	id := uuid.NewString()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		Use:      use,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	return id, signed, nil
}

func (s *JWTService) validate(tokenString string, use TokenUse) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims.Use != use {
		return nil, ErrWrongTokenUse
	}
	return claims, nil
}
