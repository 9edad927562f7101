// Package auth inspects console access tokens.
package auth

import "github.com/golang-jwt/jwt/v5"

// Claims encodes the JWT claims the backend embeds into access tokens.
//
// The client never verifies signatures; the backend remains the authority.
// Claims are read only to recover the user email and token expiry when local
// storage lacks them.
type Claims struct {
	UserID   string `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	OrgID    string `json:"orgId,omitempty"`
	Role     string `json:"role,omitempty"`
	UserName string `json:"user_name,omitempty"`

	jwt.RegisteredClaims
}
