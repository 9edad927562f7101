package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/plaidnox/veta/sdk/go/session"
)

var (
	// ErrNoRefreshToken means a 401 could not be recovered because no refresh token is stored.
	ErrNoRefreshToken = errors.New("sdk: no refresh token available")
	// ErrNoUserEmail means the refresh call could not be built because no user email is known.
	ErrNoUserEmail = errors.New("sdk: no user email available")
	// ErrRefreshRejected means the refresh endpoint answered without a usable token pair.
	ErrRefreshRejected = errors.New("sdk: refresh rejected")
	// ErrNotAuthenticated is returned by Resume when no session is stored.
	ErrNotAuthenticated = errors.New("sdk: not authenticated")
	// ErrSessionChanged aliases the storage error raised when a logout or
	// teardown raced a token rotation.
	ErrSessionChanged = session.ErrSessionChanged
)

// APIError is the normalized failure for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("sdk: http %d: %s", e.Status, msg)
}

// TransportError is returned when no HTTP response was obtained.
type TransportError struct {
	Op    string
	URL   string
	Cause error
}

func (e TransportError) Error() string {
	return fmt.Sprintf("sdk: %s %s: %v", e.Op, e.URL, e.Cause)
}

func (e TransportError) Unwrap() error { return e.Cause }

// DecodeError is returned when a JSON response body cannot be decoded.
type DecodeError struct {
	Status int
	Cause  error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("sdk: decode response (status %d): %v", e.Status, e.Cause)
}

func (e DecodeError) Unwrap() error { return e.Cause }

// ConfigError reports an invalid client configuration.
type ConfigError struct {
	Reason string
}

func (e ConfigError) Error() string { return "sdk: invalid config: " + e.Reason }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 APIError.
func IsUnauthorized(err error) bool { return StatusOf(err) == http.StatusUnauthorized }

// IsForbidden reports whether err is a 403 APIError.
func IsForbidden(err error) bool { return StatusOf(err) == http.StatusForbidden }

// IsAuthFailure reports whether err ended the session (401 or 403).
func IsAuthFailure(err error) bool { return IsUnauthorized(err) || IsForbidden(err) }

// newAPIError builds an APIError from a decoded failure body. The message is
// taken from "message", then "error" (string or {message}), then the status text.
func newAPIError(resp *http.Response, body []byte, isJSON bool) APIError {
	apiErr := APIError{Status: resp.StatusCode}
	if isJSON && len(body) > 0 {
		var payload struct {
			Message string          `json:"message"`
			Error   json.RawMessage `json:"error"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			apiErr.Message = strings.TrimSpace(payload.Message)
			if apiErr.Message == "" {
				apiErr.Message = errorField(payload.Error)
			}
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = statusText(resp)
	}
	return apiErr
}

func errorField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}

// statusText mirrors the reason phrase of the response ("Unauthorized"),
// falling back to the canonical text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
