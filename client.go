package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/plaidnox/veta/sdk/go/session"
)

const defaultBaseURL = "https://veta-api.plaidnox.com"
const defaultUserAgent = "veta-sdk-go/" + Version

// Config wires the base URL, persistence, navigation, and telemetry for the API client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client

	// Storage persists credentials and selection. Defaults to session.NewMemory().
	Storage session.Storage
	// Navigator receives the login redirect on session teardown. Defaults to NopNavigator.
	Navigator Navigator
	// LoginPath is the redirect target on teardown. Defaults to "/login".
	LoginPath string
	// AuthScheme prefixes the access token. Defaults to "Bearer".
	AuthScheme string

	// AccessToken, RefreshToken and Email seed Storage when set.
	AccessToken  string
	RefreshToken string
	Email        string

	// RefreshTimeout bounds one shared token refresh. Defaults to 30s.
	RefreshTimeout time.Duration

	Telemetry TelemetryHooks
	UserAgent string
}

// Client provides high-level helpers for interacting with the console API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *session.Store
	navigator  Navigator
	loginPath  string
	authScheme string
	refresher  *RefreshCoordinator
	telemetry  TelemetryHooks
	userAgent  string

	// Grouped service clients.
	Auth       *AuthClient
	JobTracker *JobTrackerClient
	Admin      *AdminClient
}

// NewClient validates the configuration and returns a ready-to-use Client.
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	normalized, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, ConfigError{Reason: err.Error()}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	nav := cfg.Navigator
	if nav == nil {
		nav = NopNavigator{}
	}
	loginPath := strings.TrimSpace(cfg.LoginPath)
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	if !strings.HasPrefix(loginPath, "/") {
		return nil, ConfigError{Reason: "login path must start with /"}
	}
	scheme := strings.TrimSpace(cfg.AuthScheme)
	if scheme == "" {
		scheme = DefaultAuthScheme
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	client := &Client{
		baseURL:    normalized,
		httpClient: httpClient,
		store:      session.NewStore(cfg.Storage),
		navigator:  nav,
		loginPath:  loginPath,
		authScheme: scheme,
		refresher:  NewRefreshCoordinator(cfg.RefreshTimeout),
		telemetry:  cfg.Telemetry,
		userAgent:  ua,
	}
	if err := client.seed(context.Background(), cfg); err != nil {
		return nil, err
	}
	client.Auth = &AuthClient{client: client}
	client.JobTracker = &JobTrackerClient{client: client}
	client.Admin = &AdminClient{client: client}
	return client, nil
}

func (c *Client) seed(ctx context.Context, cfg Config) error {
	access := normalizeToken(cfg.AccessToken)
	refresh := strings.TrimSpace(cfg.RefreshToken)
	if access == "" && refresh == "" && cfg.Email == "" {
		return nil
	}
	if access == "" && refresh != "" {
		return ConfigError{Reason: "refresh token requires an access token"}
	}
	if err := c.store.SaveLogin(ctx, access, refresh, cfg.Email); err != nil {
		return fmt.Errorf("sdk: seed credentials: %w", err)
	}
	return nil
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("base URL required")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" {
		return "", errors.New("base URL missing scheme (http/https)")
	}
	if u.Host == "" {
		return "", errors.New("base URL missing host")
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return strings.TrimSuffix(u.String(), "/"), nil
}

// Store exposes the persisted credentials and selection.
func (c *Client) Store() *session.Store { return c.store }

// Refresher exposes the client's refresh coordinator.
func (c *Client) Refresher() *RefreshCoordinator { return c.refresher }

// BaseURL returns the normalized API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) buildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// withQuery appends the non-empty values in q to path.
func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	encoded := q.Encode()
	if encoded == "" {
		return path
	}
	return path + "?" + encoded
}
