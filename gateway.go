package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/plaidnox/veta/sdk/go/auth"
	"github.com/plaidnox/veta/sdk/go/headers"
	"github.com/plaidnox/veta/sdk/go/routes"
)

// maxAuthReplays bounds how often one call is re-sent after a session
// recovery. The refresh endpoint itself always gets zero.
const maxAuthReplays = 1

// RequestOptions describes one gateway call.
type RequestOptions struct {
	// Method defaults to GET.
	Method string
	// Body is JSON-encoded and sent with Content-Type application/json.
	Body any
	// RawBody is sent as-is with ContentType; it takes precedence over Body.
	RawBody     []byte
	ContentType string
	// Header entries override the defaults set by the gateway.
	Header http.Header
	// Unauthenticated suppresses the Authorization header.
	Unauthenticated bool
	// AuthScheme overrides the client's scheme for this call.
	AuthScheme string
	// SkipRefresh disables 401 recovery for this call.
	SkipRefresh bool
	// KeepSession reports 401/403 to the caller without tearing the session
	// down. Only credential checks such as login set it.
	KeepSession bool
}

// pendingRequest is a call frozen into replayable bytes.
type pendingRequest struct {
	method    string
	path      string
	header    http.Header
	body      []byte
	requestID string
	opts      RequestOptions
}

func newPendingRequest(path string, opts RequestOptions) (*pendingRequest, error) {
	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodGet
	}
	header := opts.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	var body []byte
	switch {
	case opts.RawBody != nil:
		body = opts.RawBody
		if opts.ContentType != "" && header.Get(headers.ContentType) == "" {
			header.Set(headers.ContentType, opts.ContentType)
		}
	case opts.Body != nil:
		encoded, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("sdk: encode request body: %w", err)
		}
		body = encoded
		if header.Get(headers.ContentType) == "" {
			header.Set(headers.ContentType, "application/json")
		}
	}
	if header.Get("Accept") == "" {
		header.Set("Accept", "application/json")
	}
	requestID := header.Get(headers.RequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return &pendingRequest{
		method:    method,
		path:      path,
		header:    header,
		body:      body,
		requestID: requestID,
		opts:      opts,
	}, nil
}

func (p *pendingRequest) build(ctx context.Context, url string) (*http.Request, error) {
	var body io.Reader = http.NoBody
	if len(p.body) > 0 {
		body = bytes.NewReader(p.body)
	}
	req, err := http.NewRequestWithContext(ctx, p.method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header = p.header.Clone()
	req.Header.Set(headers.RequestID, p.requestID)
	injectTraceparent(ctx, req)
	return req, nil
}

// endpoint strips the query from path.
func (p *pendingRequest) endpoint() string {
	if i := strings.IndexByte(p.path, '?'); i >= 0 {
		return p.path[:i]
	}
	return p.path
}

// Request performs one API call.
//
// A 401 triggers one shared session refresh followed by exactly one replay
// of the same bytes. A 401 that cannot be recovered, and any 403, tear the
// session down (credentials and selection cleared, navigator sent to the
// login page) before the APIError is returned. Transport failures and other
// HTTP errors are returned as-is without recovery.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	pending, err := newPendingRequest(path, opts)
	if err != nil {
		return nil, err
	}
	replays := maxAuthReplays
	if opts.SkipRefresh || pending.endpoint() == routes.UsersTokenRefresh {
		replays = 0
	}
	return c.do(ctx, pending, replays)
}

func (c *Client) do(ctx context.Context, p *pendingRequest, replays int) (*Response, error) {
	var sent string
	if !p.opts.Unauthenticated {
		tok, err := c.store.AccessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("sdk: read access token: %w", err)
		}
		sent = tok
	}

	req, err := p.build(ctx, c.buildURL(p.path))
	if err != nil {
		return nil, err
	}
	c.prepare(req, p.opts, sent)
	httpResp, err := c.send(req, p.endpoint())
	if err != nil {
		return nil, err
	}
	resp, err := readResponse(httpResp, p.endpoint())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 400 {
		return resp, nil
	}

	apiErr := newAPIError(httpResp, resp.Body, resp.JSON)
	if apiErr.Status == http.StatusUnauthorized && replays > 0 {
		recoverErr := c.recoverSession(ctx, sent)
		if recoverErr == nil {
			return c.do(ctx, p, replays-1)
		}
		// A caller that stopped waiting does not get to end the session.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.telemetry.log(ctx, LogLevelWarn, EventSessionRecoveryFailed, map[string]any{
			"path":  p.endpoint(),
			"error": recoverErr.Error(),
		})
	}
	if !p.opts.KeepSession && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
		c.teardown(ctx, apiErr.Status, p.endpoint())
	}
	return nil, apiErr
}

func (c *Client) prepare(req *http.Request, opts RequestOptions, token string) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	var strategy authStrategy = noAuth{}
	if !opts.Unauthenticated {
		scheme := opts.AuthScheme
		if strings.TrimSpace(scheme) == "" {
			scheme = c.authScheme
		}
		strategy = schemeAuth{scheme: scheme, token: token}
	}
	strategy.Apply(req)
}

func (c *Client) send(req *http.Request, endpoint string) (*http.Response, error) {
	ctx := req.Context()
	if c.telemetry.OnHTTPRequest != nil {
		c.telemetry.OnHTTPRequest(ctx, req)
	}
	c.telemetry.log(ctx, LogLevelDebug, EventHTTPRequest, map[string]any{
		"method":     req.Method,
		"path":       endpoint,
		"request_id": req.Header.Get(headers.RequestID),
	})
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if c.telemetry.OnHTTPResponse != nil {
		c.telemetry.OnHTTPResponse(ctx, req, resp, err, latency)
	}
	status := "error"
	if resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	c.telemetry.metric(ctx, MetricHTTPLatency, float64(latency.Milliseconds()), map[string]string{
		"method": req.Method,
		"status": status,
	})
	if err != nil {
		return nil, TransportError{Op: req.Method, URL: endpoint, Cause: err}
	}
	return resp, nil
}

// recoverSession makes the stored credentials usable again after a 401 on a
// request that carried sent. It returns nil when the caller should replay.
func (c *Client) recoverSession(ctx context.Context, sent string) error {
	creds, err := c.store.Credentials(ctx)
	if err != nil {
		return err
	}
	// Another caller already rotated the pair while this request was in flight.
	if creds.AccessToken != "" && creds.AccessToken != sent {
		return nil
	}
	if creds.RefreshToken == "" {
		return ErrNoRefreshToken
	}
	_, err = c.refresher.BeginOrJoin(ctx, c.refreshSession).Wait(ctx)
	return err
}

// refreshSession is the single in-flight refresh. On failure it tears the
// session down before resolving so no waiter can start a second refresh
// with the dead token.
func (c *Client) refreshSession(ctx context.Context) error {
	c.telemetry.log(ctx, LogLevelInfo, EventSessionRefreshStarted, nil)
	err := c.rotateTokens(ctx)
	c.telemetry.refreshOutcome(ctx, err)
	// A rejected refresh call has already torn the session down in Request.
	if err != nil && !IsAuthFailure(err) {
		c.teardown(ctx, http.StatusUnauthorized, routes.UsersTokenRefresh)
	}
	return err
}

func (c *Client) rotateTokens(ctx context.Context) error {
	creds, err := c.store.Credentials(ctx)
	if err != nil {
		return err
	}
	if creds.RefreshToken == "" {
		return ErrNoRefreshToken
	}
	email := creds.Email
	if email == "" {
		email = auth.EmailFromToken(creds.AccessToken)
	}
	if email == "" {
		return ErrNoUserEmail
	}
	pair, err := c.Auth.Refresh(ctx, email, creds.RefreshToken)
	if err != nil {
		return fmt.Errorf("sdk: refresh session: %w", err)
	}
	if pair.Token == "" || pair.RefreshToken == "" {
		return ErrRefreshRejected
	}
	if err := c.store.RotateTokens(ctx, creds.RefreshToken, pair.Token, pair.RefreshToken); err != nil {
		return err
	}
	if creds.Email == "" {
		return c.store.SetEmail(ctx, email)
	}
	return nil
}

// teardown clears credentials and selection and sends the navigator to the
// login page. Repeating it is harmless.
func (c *Client) teardown(ctx context.Context, status int, endpoint string) {
	if err := c.store.Teardown(ctx); err != nil {
		c.telemetry.log(ctx, LogLevelError, EventSessionTeardownStorage, map[string]any{"error": err.Error()})
	}
	redirected := loginRedirect(c.navigator, c.loginPath)
	c.telemetry.log(ctx, LogLevelWarn, EventSessionTeardown, map[string]any{
		"status":     status,
		"path":       endpoint,
		"redirected": redirected,
	})
	c.telemetry.metric(ctx, MetricSessionTeardown, 1, map[string]string{"status": strconv.Itoa(status)})
}

// requestJSON performs a gateway call and decodes the JSON body into out.
func (c *Client) requestJSON(ctx context.Context, path string, opts RequestOptions, out any) error {
	resp, err := c.Request(ctx, path, opts)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}
