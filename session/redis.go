package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces console state in a shared Redis.
const DefaultRedisPrefix = "veta:session:"

// Redis keeps one hash per profile so several console processes (or hosts)
// can share a single signed-in session.
type Redis struct {
	rdb  redis.UniversalClient
	key  string
	ttl  time.Duration
	owns bool
}

// RedisOptions configures NewRedis.
type RedisOptions struct {
	// URL is a redis:// connection string. Ignored when Client is set.
	URL string
	// Client reuses an existing connection.
	Client redis.UniversalClient
	// Prefix defaults to DefaultRedisPrefix.
	Prefix string
	// Profile selects the hash within Prefix; defaults to "default".
	Profile string
	// TTL, when positive, expires the whole hash after the last write.
	TTL time.Duration
}

// NewRedis connects (or reuses opts.Client) and pings the server.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	rdb := opts.Client
	owns := false
	if rdb == nil {
		if opts.URL == "" {
			return nil, errors.New("session: redis url or client required")
		}
		parsed, err := redis.ParseURL(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("session: parse redis url: %w", err)
		}
		rdb = redis.NewClient(parsed)
		owns = true
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		if owns {
			_ = rdb.Close()
		}
		return nil, fmt.Errorf("session: redis ping: %w", err)
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	profile := opts.Profile
	if profile == "" {
		profile = "default"
	}
	return &Redis{rdb: rdb, key: prefix + profile, ttl: opts.TTL, owns: owns}, nil
}

func (r *Redis) Get(ctx context.Context, key Key) (string, error) {
	v, err := r.rdb.HGet(ctx, r.key, string(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: redis hget %s: %w", key, err)
	}
	return v, nil
}

func (r *Redis) Put(ctx context.Context, entries map[Key]string) error {
	set := make(map[string]any, len(entries))
	var del []string
	for k, v := range entries {
		if v == "" {
			del = append(del, string(k))
			continue
		}
		set[string(k)] = v
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(set) > 0 {
			pipe.HSet(ctx, r.key, set)
		}
		if len(del) > 0 {
			pipe.HDel(ctx, r.key, del...)
		}
		if r.ttl > 0 {
			pipe.Expire(ctx, r.key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: redis put: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}
	fields := make([]string, len(keys))
	for i, k := range keys {
		fields[i] = string(k)
	}
	if err := r.rdb.HDel(ctx, r.key, fields...).Err(); err != nil {
		return fmt.Errorf("session: redis hdel: %w", err)
	}
	return nil
}

// Close releases the connection when NewRedis opened it.
func (r *Redis) Close() error {
	if !r.owns {
		return nil
	}
	return r.rdb.Close()
}
