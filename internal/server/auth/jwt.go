// Package auth mints and verifies the self-contained access tokens used
// during the relay phase. Tokens are JWTs signed with a process-wide HS256
// secret and verifiable without a store lookup.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Hashith00/tlschat/internal/common"
	"github.com/Hashith00/tlschat/internal/server/models"
)

// Claims carries the registered claims plus the identity fields embedded in
// every access token. Subject is the numeric user id in decimal.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GenerateToken mints an access token for the user with
// expiry = issued-at + validity.
func GenerateToken(user *models.User, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Name:  user.Name,
		Email: user.Email,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry of an access token and returns
// its claims. Expired tokens map to common.ErrTokenExpired; every other
// failure maps to common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// ValidToken reports whether the access token verifies. Any parse or
// cryptographic failure yields false; nothing propagates to the caller.
func ValidToken(tokenString string, secretKey []byte) bool {
	_, err := ParseToken(tokenString, secretKey)
	return err == nil
}
