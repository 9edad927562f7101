package sdk

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
)

// Response is a successful gateway result. JSON bodies have already been
// validated; everything else is kept as opaque text.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	JSON       bool
}

// Text returns the body as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// Decode unmarshals the JSON body into out. An empty body leaves out untouched.
func (r *Response) Decode(out any) error {
	if r == nil || len(r.Body) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return DecodeError{Status: r.StatusCode, Cause: err}
	}
	return nil
}

func isJSONContentType(value string) bool {
	if value == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.Contains(strings.ToLower(value), "application/json")
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// readResponse drains and closes resp.Body.
func readResponse(resp *http.Response, path string) (*Response, error) {
	//nolint:errcheck // best-effort cleanup on return
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, TransportError{Op: "read", URL: path, Cause: err}
	}
	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		JSON:       isJSONContentType(resp.Header.Get("Content-Type")),
	}
	if out.JSON && len(body) > 0 && !json.Valid(body) && resp.StatusCode < 400 {
		return nil, DecodeError{Status: resp.StatusCode, Cause: errors.New("invalid JSON body")}
	}
	return out, nil
}
