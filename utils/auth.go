package utils

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Token secrets, loaded from .env in main.
var (
	AccessSecret  = []byte("access_secret")
	RefreshSecret = []byte("refresh_secret")
)

// Claims represents the JWT claims carried by both token kinds.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// GenerateTokens issues the access/refresh token pair for a user: access
// valid for a day, refresh for a week.
func GenerateTokens(userID, role string) (accessToken, refreshToken string, err error) {
	accessToken, err = signToken(userID, role, AccessSecret, 24*time.Hour)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = signToken(userID, role, RefreshSecret, 7*24*time.Hour)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func signToken(userID, role string, secret []byte, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken validates a token against the given secret and returns its
// claims.
func ParseToken(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
