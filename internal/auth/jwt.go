// Package auth issues and validates the HS256 bearer tokens used by both
// the request-scoped and streaming paths.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/travel-buddies/travel-buddies-backend/errors"
)

// Claims is the token payload. Subject carries the user ID.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService issues and validates bearer tokens.
type TokenService struct {
	secret []byte
	expiry time.Duration
}

// NewTokenService creates a TokenService with the given signing secret and
// token lifetime.
func NewTokenService(secret string, expiry time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), expiry: expiry}
}

// IssueToken creates a signed token for the given user.
func (s *TokenService) IssueToken(userID, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ServerError, "failed to sign token")
	}
	return signed, nil
}

// Validate parses and verifies a token, returning the user ID and username
// it was issued for. Expired, malformed, or wrongly signed tokens all
// yield an authentication error.
func (s *TokenService) Validate(tokenString string) (userID, username string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, apperrors.Unauthorized("invalid_token", "Unexpected signing method")
			}
			return s.secret, nil
		})
	if err != nil || !token.Valid {
		return "", "", apperrors.Unauthorized("invalid_token", "Invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return "", "", apperrors.Unauthorized("invalid_claims", "Invalid token structure")
	}

	return claims.Subject, claims.Username, nil
}
