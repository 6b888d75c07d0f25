// Package auth signs and verifies the bearer tokens accepted by the
// metadata service.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the caller identity. AccountID scopes entity ownership;
// UserID is recorded as the uploader of a file.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"uid"`
	AccountID string `json:"aid"`
}

// GenerateToken signs an HS256 token valid for validityDuration.
func GenerateToken(userID, accountID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:    userID,
		AccountID: accountID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies tokenString and returns its claims. Expired tokens
// yield common.ErrTokenExpired; anything else that fails verification,
// including a token without identity, yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" || claims.AccountID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
