// Package config loads settings for tools built on the console SDK from YAML
// and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Session storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the root configuration.
// Sources, first match wins:
//  1. the explicit path passed to Load/MustLoad;
//  2. the CONFIG_PATH environment variable;
//  3. ./local.yaml in the working directory;
//  4. environment variables only.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig points the client at the console API.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url"        env:"VETA_API_URL"         env-default:"https://veta-api.plaidnox.com"`
	AuthScheme     string        `yaml:"auth_scheme"     env:"VETA_AUTH_SCHEME"     env-default:"Bearer"`
	Timeout        time.Duration `yaml:"timeout"         env:"VETA_HTTP_TIMEOUT"    env-default:"30s"`
	RefreshTimeout time.Duration `yaml:"refresh_timeout" env:"VETA_REFRESH_TIMEOUT" env-default:"30s"`
}

// SessionConfig selects where credentials are kept.
type SessionConfig struct {
	Backend   string      `yaml:"backend"    env:"VETA_SESSION_BACKEND" env-default:"file"`
	Path      string      `yaml:"path"       env:"VETA_SESSION_PATH"`
	LoginPath string      `yaml:"login_path" env:"VETA_LOGIN_PATH"      env-default:"/login"`
	Redis     RedisConfig `yaml:"redis"`
}

// RedisConfig configures the shared Redis session backend.
type RedisConfig struct {
	URL     string        `yaml:"url"     env:"VETA_REDIS_URL"`
	Prefix  string        `yaml:"prefix"  env:"VETA_REDIS_PREFIX"  env-default:"veta:session:"`
	Profile string        `yaml:"profile" env:"VETA_REDIS_PROFILE" env-default:"default"`
	TTL     time.Duration `yaml:"ttl"     env:"VETA_REDIS_TTL"     env-default:"0s"`
}

// LogConfig controls tool logging.
type LogConfig struct {
	Level  string `yaml:"level"  env:"VETA_LOG_LEVEL"  env-default:"info"`
	Pretty bool   `yaml:"pretty" env:"VETA_LOG_PRETTY" env-default:"false"`
}

// MustLoad wraps Load and panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the configuration: explicit path, CONFIG_PATH, ./local.yaml, env.
func Load(path string) (*Config, error) {
	switch {
	case path != "":
		return readFile(path)
	case os.Getenv("CONFIG_PATH") != "":
		return readFile(os.Getenv("CONFIG_PATH"))
	}
	if _, err := os.Stat("local.yaml"); err == nil {
		return readFile("local.yaml")
	}
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: file does not exist: %s", path)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("config: api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout must be > 0")
	}
	switch c.Session.Backend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.Session.Redis.URL == "" {
			return fmt.Errorf("config: session.redis.url is required for the redis backend")
		}
	default:
		return fmt.Errorf("config: unknown session.backend %q", c.Session.Backend)
	}
	if !strings.HasPrefix(c.Session.LoginPath, "/") {
		return fmt.Errorf("config: session.login_path must start with /")
	}
	if c.Session.Redis.TTL < 0 {
		return fmt.Errorf("config: session.redis.ttl must be >= 0")
	}
	return nil
}
