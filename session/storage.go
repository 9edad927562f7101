// Package session persists the console's client-side state: the credential
// pair, the cached user email, and the domain/organization selection.
package session

import "context"

// Key names one persisted entry.
type Key string

const (
	KeyAccessToken    Key = "auth_token"
	KeyRefreshToken   Key = "refresh_token" // #nosec G101 -- storage key name, not a credential
	KeyUserEmail      Key = "user_email"
	KeySelectedDomain Key = "selected_domain"
	KeySelectedOrg    Key = "selected_org"
)

// AllKeys lists every key the console persists.
var AllKeys = []Key{KeyAccessToken, KeyRefreshToken, KeyUserEmail, KeySelectedDomain, KeySelectedOrg}

// Storage is a flat string key/value space. A missing key reads as "".
// Put and Delete apply to all given keys at once: readers never observe
// half of a Put or half of a Delete.
type Storage interface {
	Get(ctx context.Context, key Key) (string, error)
	Put(ctx context.Context, entries map[Key]string) error
	Delete(ctx context.Context, keys ...Key) error
}
