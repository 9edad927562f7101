package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned for tokens that are not three dot-separated segments.
var ErrNotJWT = errors.New("sdk/auth: token is not a JWT")

// LooksLikeJWT reports whether token has the three-segment JWT shape.
func LooksLikeJWT(token string) bool {
	t := strings.TrimSpace(token)
	if t == "" {
		return false
	}
	return strings.Count(t, ".") == 2
}

// ParseUnverified decodes the claims of token without checking its signature.
func ParseUnverified(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if !LooksLikeJWT(token) {
		return Claims{}, ErrNotJWT
	}
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Claims{}, fmt.Errorf("sdk/auth: parse token: %w", err)
	}
	return claims, nil
}

// EmailFromToken returns the email claim of token, or "" when absent.
func EmailFromToken(token string) string {
	claims, err := ParseUnverified(token)
	if err != nil {
		return ""
	}
	if claims.Email != "" {
		return claims.Email
	}
	if strings.Contains(claims.Subject, "@") {
		return claims.Subject
	}
	return ""
}

// ExpiresAt returns the exp claim of token. ok is false when the token
// carries no readable expiry.
func ExpiresAt(token string) (exp time.Time, ok bool) {
	claims, err := ParseUnverified(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
