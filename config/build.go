package config

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	sdk "github.com/plaidnox/veta/sdk/go"
	"github.com/plaidnox/veta/sdk/go/session"
)

// OpenStorage builds the configured session backend. The returned close func
// is never nil.
func (c *Config) OpenStorage(ctx context.Context) (session.Storage, func() error, error) {
	noop := func() error { return nil }
	switch c.Session.Backend {
	case BackendMemory:
		return session.NewMemory(), noop, nil
	case BackendFile:
		f, err := session.NewFile(c.Session.Path)
		if err != nil {
			return nil, noop, err
		}
		return f, noop, nil
	case BackendRedis:
		r, err := session.NewRedis(ctx, session.RedisOptions{
			URL:     c.Session.Redis.URL,
			Prefix:  c.Session.Redis.Prefix,
			Profile: c.Session.Redis.Profile,
			TTL:     c.Session.Redis.TTL,
		})
		if err != nil {
			return nil, noop, err
		}
		return r, r.Close, nil
	}
	return nil, noop, fmt.Errorf("config: unknown session.backend %q", c.Session.Backend)
}

// ClientConfig maps the api and session sections onto sdk.Config.
func (c *Config) ClientConfig(storage session.Storage, nav sdk.Navigator, telemetry sdk.TelemetryHooks) sdk.Config {
	return sdk.Config{
		BaseURL:        c.API.BaseURL,
		HTTPClient:     &http.Client{Timeout: c.API.Timeout},
		Storage:        storage,
		Navigator:      nav,
		LoginPath:      c.Session.LoginPath,
		AuthScheme:     c.API.AuthScheme,
		RefreshTimeout: c.API.RefreshTimeout,
		Telemetry:      telemetry,
		UserAgent:      "veta-cli/" + sdk.Version,
	}
}

// LogLevel parses log.level, falling back to info.
func (c *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
