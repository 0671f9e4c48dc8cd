// Package utils holds small helpers shared by tests and tooling.
package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed HS256 JWT along with its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// NewAccessToken signs a token shaped like the ones the identity provider
// issues: sub carries the user id and role the role name.
func NewAccessToken(secret, userID, role string, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// BearerHeader returns the Authorization header value for a fresh token, or
// "" when signing fails.
func BearerHeader(secret, userID, role string) string {
	tok, err := NewAccessToken(secret, userID, role, time.Hour)
	if err != nil {
		return ""
	}
	return "Bearer " + tok.Token
}
