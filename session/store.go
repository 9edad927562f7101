package session

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrSessionChanged is returned by RotateTokens when the stored refresh
// token no longer matches the one the rotation started from.
var ErrSessionChanged = errors.New("session: credentials changed during rotation")

// Credentials is the persisted credential pair plus its user.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Email        string
}

// HasTokens reports whether both tokens are present.
func (c Credentials) HasTokens() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// Selection is the cached domain/organization the user is looking at.
type Selection struct {
	Domain string
	OrgID  string
}

// Store is the typed view over a Storage. Multi-key reads and
// read-modify-write sequences are serialized by a mutex so concurrent
// callers never observe a torn credential pair.
type Store struct {
	mu      sync.RWMutex
	storage Storage
}

// NewStore wraps storage; a nil storage falls back to NewMemory().
func NewStore(storage Storage) *Store {
	if storage == nil {
		storage = NewMemory()
	}
	return &Store{storage: storage}
}

// Storage returns the underlying backend.
func (s *Store) Storage() Storage { return s.storage }

// Credentials reads the token pair and email together.
func (s *Store) Credentials(ctx context.Context) (Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credentialsLocked(ctx)
}

func (s *Store) credentialsLocked(ctx context.Context) (Credentials, error) {
	var (
		c   Credentials
		err error
	)
	if c.AccessToken, err = s.storage.Get(ctx, KeyAccessToken); err != nil {
		return Credentials{}, err
	}
	if c.RefreshToken, err = s.storage.Get(ctx, KeyRefreshToken); err != nil {
		return Credentials{}, err
	}
	if c.Email, err = s.storage.Get(ctx, KeyUserEmail); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

// AccessToken returns the stored access token, or "" when signed out.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storage.Get(ctx, KeyAccessToken)
}

// SaveLogin persists a freshly issued pair together with its user email.
func (s *Store) SaveLogin(ctx context.Context, access, refresh, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := map[Key]string{
		KeyAccessToken:  strings.TrimSpace(access),
		KeyRefreshToken: strings.TrimSpace(refresh),
	}
	if email = strings.TrimSpace(email); email != "" {
		entries[KeyUserEmail] = email
	}
	return s.storage.Put(ctx, entries)
}

// SaveTokens overwrites the pair wholesale, leaving the email untouched.
func (s *Store) SaveTokens(ctx context.Context, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Put(ctx, map[Key]string{
		KeyAccessToken:  strings.TrimSpace(access),
		KeyRefreshToken: strings.TrimSpace(refresh),
	})
}

// RotateTokens replaces the pair only if the stored refresh token still
// equals previousRefresh. A logout or teardown that raced the rotation
// therefore wins, and ErrSessionChanged is returned.
func (s *Store) RotateTokens(ctx context.Context, previousRefresh, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.storage.Get(ctx, KeyRefreshToken)
	if err != nil {
		return err
	}
	if current == "" || current != previousRefresh {
		return ErrSessionChanged
	}
	return s.storage.Put(ctx, map[Key]string{
		KeyAccessToken:  strings.TrimSpace(access),
		KeyRefreshToken: strings.TrimSpace(refresh),
	})
}

// SetEmail caches the signed-in user's email.
func (s *Store) SetEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Put(ctx, map[Key]string{KeyUserEmail: strings.TrimSpace(email)})
}

// ClearTokens removes both tokens.
func (s *Store) ClearTokens(ctx context.Context) error {
	return s.delete(ctx, KeyAccessToken, KeyRefreshToken)
}

// ClearEmail removes the cached email.
func (s *Store) ClearEmail(ctx context.Context) error {
	return s.delete(ctx, KeyUserEmail)
}

// Teardown removes the tokens and the cached selection in one write. The
// email survives so a login form can be prefilled.
func (s *Store) Teardown(ctx context.Context) error {
	return s.delete(ctx, KeyAccessToken, KeyRefreshToken, KeySelectedDomain, KeySelectedOrg)
}

// Reset removes every persisted key.
func (s *Store) Reset(ctx context.Context) error {
	return s.delete(ctx, AllKeys...)
}

// Selection returns the cached domain and organization.
func (s *Store) Selection(ctx context.Context) (Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	domain, err := s.storage.Get(ctx, KeySelectedDomain)
	if err != nil {
		return Selection{}, err
	}
	org, err := s.storage.Get(ctx, KeySelectedOrg)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Domain: domain, OrgID: org}, nil
}

// SetDomain caches the selected domain; "" clears it.
func (s *Store) SetDomain(ctx context.Context, domain string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Put(ctx, map[Key]string{KeySelectedDomain: strings.TrimSpace(domain)})
}

// SetOrg caches the selected organization; "" clears it.
func (s *Store) SetOrg(ctx context.Context, orgID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Put(ctx, map[Key]string{KeySelectedOrg: strings.TrimSpace(orgID)})
}

func (s *Store) delete(ctx context.Context, keys ...Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Delete(ctx, keys...)
}
