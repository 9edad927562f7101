package sdk

import (
	"net/url"
	"strings"
	"sync"
)

// DefaultLoginPath is where teardown sends the user.
const DefaultLoginPath = "/login"

// Navigator abstracts the location the user is looking at.
// Location returns the current path plus query, e.g. "/jobtrack?org=7".
type Navigator interface {
	Location() string
	Replace(target string)
}

// NopNavigator never navigates.
type NopNavigator struct{}

func (NopNavigator) Location() string { return "" }
func (NopNavigator) Replace(string)   {}

// MemoryNavigator tracks a location in memory and records every redirect.
type MemoryNavigator struct {
	mu        sync.Mutex
	location  string
	redirects []string
}

// NewMemoryNavigator starts at location ("/" when empty).
func NewMemoryNavigator(location string) *MemoryNavigator {
	if location == "" {
		location = "/"
	}
	return &MemoryNavigator{location: location}
}

func (n *MemoryNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *MemoryNavigator) Replace(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.location = target
	n.redirects = append(n.redirects, target)
}

// Navigate moves to location without recording a redirect.
func (n *MemoryNavigator) Navigate(location string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.location = location
}

// Redirects returns every target passed to Replace, oldest first.
func (n *MemoryNavigator) Redirects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.redirects...)
}

// loginRedirect sends nav to loginPath carrying the current location as
// next. It is a no-op when the user is already on the login page, which
// keeps repeated teardowns from stacking redirects. Reports whether it navigated.
func loginRedirect(nav Navigator, loginPath string) bool {
	if nav == nil {
		return false
	}
	current := nav.Location()
	path := current
	if u, err := url.Parse(current); err == nil {
		path = u.Path
	}
	if strings.HasPrefix(path, loginPath) {
		return false
	}
	target := loginPath
	if current != "" {
		target += "?next=" + url.QueryEscape(current)
	}
	nav.Replace(target)
	return true
}

// NextFromLocation extracts the round-trip location from a login URL, so a
// caller can resume where the user was after signing in again.
func NextFromLocation(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return ""
	}
	next := u.Query().Get("next")
	// Only same-site paths are honored.
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}
