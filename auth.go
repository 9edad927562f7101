// Package sdk is the Go client for the Veta scan console API. Every call goes
// through one authenticated gateway that attaches credentials, normalizes
// errors, and recovers expired sessions with a single shared token refresh.
package sdk

import (
	"net/http"
	"strings"

	"github.com/plaidnox/veta/sdk/go/headers"
)

// DefaultAuthScheme prefixes the access token in the Authorization header.
const DefaultAuthScheme = "Bearer"

type authStrategy interface {
	Apply(req *http.Request)
}

// schemeAuth attaches "<scheme> <token>". An empty token attaches nothing.
type schemeAuth struct {
	scheme string
	token  string
}

func (a schemeAuth) Apply(req *http.Request) {
	if a.token == "" {
		return
	}
	scheme := strings.TrimSpace(a.scheme)
	if scheme == "" {
		scheme = DefaultAuthScheme
	}
	req.Header.Set(headers.Authorization, strings.TrimSpace(scheme+" "+a.token))
}

type noAuth struct{}

func (noAuth) Apply(*http.Request) {}

// normalizeToken strips a pasted "Bearer " prefix so the scheme is never doubled.
func normalizeToken(token string) string {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
