package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	sdk "github.com/plaidnox/veta/sdk/go"
	"github.com/plaidnox/veta/sdk/go/session"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

// chdir switches the working directory for the rest of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

const sampleYAML = `
api:
  base_url: "https://console.example.test/api"
  auth_scheme: "Token"
  timeout: "5s"
  refresh_timeout: "2s"
session:
  backend: "memory"
  login_path: "/signin"
log:
  level: "debug"
  pretty: true
`

const minimalYAML = `
session:
  backend: "memory"
`

const brokenYAML = `
api:
  base_url: ["unterminated"
`

func TestLoadExplicitPath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://console.example.test/api", cfg.API.BaseURL)
	require.Equal(t, "Token", cfg.API.AuthScheme)
	require.Equal(t, 5*time.Second, cfg.API.Timeout)
	require.Equal(t, 2*time.Second, cfg.API.RefreshTimeout)
	require.Equal(t, BackendMemory, cfg.Session.Backend)
	require.Equal(t, "/signin", cfg.Session.LoginPath)
	require.Equal(t, "debug", cfg.Log.Level)
	require.True(t, cfg.Log.Pretty)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", minimalYAML)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://veta-api.plaidnox.com", cfg.API.BaseURL)
	require.Equal(t, "Bearer", cfg.API.AuthScheme)
	require.Equal(t, 30*time.Second, cfg.API.Timeout)
	require.Equal(t, "/login", cfg.Session.LoginPath)
	require.Equal(t, "veta:session:", cfg.Session.Redis.Prefix)
	require.Equal(t, "default", cfg.Session.Redis.Profile)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigPathEnv(t *testing.T) {
	path := writeFile(t, t.TempDir(), "from-env.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "/signin", cfg.Session.LoginPath)
}

func TestLoadExplicitPathBeatsConfigPath(t *testing.T) {
	dir := t.TempDir()
	explicit := writeFile(t, dir, "explicit.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", writeFile(t, dir, "env.yaml", minimalYAML))

	cfg, err := Load(explicit)
	require.NoError(t, err)
	require.Equal(t, "/signin", cfg.Session.LoginPath)
}

func TestLoadLocalYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "local.yaml", sampleYAML)
	chdir(t, dir)
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "Token", cfg.API.AuthScheme)
}

func TestLoadEnvOnly(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("VETA_API_URL", "http://localhost:8080")
	t.Setenv("VETA_SESSION_BACKEND", "redis")
	t.Setenv("VETA_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("VETA_REDIS_TTL", "1h")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	require.Equal(t, BackendRedis, cfg.Session.Backend)
	require.Equal(t, "redis://localhost:6379/0", cfg.Session.Redis.URL)
	require.Equal(t, time.Hour, cfg.Session.Redis.TTL)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)
	t.Setenv("VETA_LOGIN_PATH", "/auth/login")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/auth/login", cfg.Session.LoginPath)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorContains(t, err, "does not exist")

	_, err = Load(writeFile(t, dir, "broken.yaml", brokenYAML))
	require.Error(t, err)

	_, err = Load(writeFile(t, dir, "backend.yaml", "session:\n  backend: \"s3\"\n"))
	require.ErrorContains(t, err, "unknown session.backend")

	_, err = Load(writeFile(t, dir, "redis.yaml", "session:\n  backend: \"redis\"\n"))
	require.ErrorContains(t, err, "redis.url")

	_, err = Load(writeFile(t, dir, "login.yaml", "session:\n  backend: \"memory\"\n  login_path: \"login\"\n"))
	require.ErrorContains(t, err, "login_path")
}

func TestMustLoadPanics(t *testing.T) {
	require.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "nope.yaml")) })
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		cfg := &Config{Session: SessionConfig{Backend: BackendMemory}}
		st, closeFn, err := cfg.OpenStorage(ctx)
		require.NoError(t, err)
		require.IsType(t, &session.Memory{}, st)
		require.NoError(t, closeFn())
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "creds.json")
		cfg := &Config{Session: SessionConfig{Backend: BackendFile, Path: path}}
		st, _, err := cfg.OpenStorage(ctx)
		require.NoError(t, err)
		require.NoError(t, st.Put(ctx, map[session.Key]string{session.KeyUserEmail: "ana@acme.test"}))
		_, err = os.Stat(path)
		require.NoError(t, err)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &Config{Session: SessionConfig{
			Backend: BackendRedis,
			Redis:   RedisConfig{URL: "redis://" + mr.Addr(), Prefix: "test:", Profile: "ci"},
		}}
		st, closeFn, err := cfg.OpenStorage(ctx)
		require.NoError(t, err)
		t.Cleanup(func() { _ = closeFn() })
		require.NoError(t, st.Put(ctx, map[session.Key]string{session.KeyUserEmail: "ana@acme.test"}))
		require.Equal(t, "ana@acme.test", mr.HGet("test:ci", string(session.KeyUserEmail)))
	})

	t.Run("redis unreachable", func(t *testing.T) {
		cfg := &Config{Session: SessionConfig{Backend: BackendRedis, Redis: RedisConfig{URL: "redis://127.0.0.1:1"}}}
		_, closeFn, err := cfg.OpenStorage(ctx)
		require.Error(t, err)
		require.NotNil(t, closeFn)
	})
}

func TestClientConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	nav := sdk.NewMemoryNavigator("/")
	sc := cfg.ClientConfig(session.NewMemory(), nav, sdk.TelemetryHooks{})
	require.Equal(t, "https://console.example.test/api", sc.BaseURL)
	require.Equal(t, 5*time.Second, sc.HTTPClient.Timeout)
	require.Equal(t, "/signin", sc.LoginPath)
	require.Equal(t, "Token", sc.AuthScheme)
	require.Equal(t, 2*time.Second, sc.RefreshTimeout)
	require.Same(t, nav, sc.Navigator)

	client, err := sdk.NewClient(sc)
	require.NoError(t, err)
	require.NotNil(t, client.JobTracker)
}

func TestLogLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, (&Config{Log: LogConfig{Level: "debug"}}).LogLevel())
	require.Equal(t, zerolog.InfoLevel, (&Config{Log: LogConfig{Level: "loud"}}).LogLevel())
	require.Equal(t, zerolog.InfoLevel, (&Config{}).LogLevel())
}
