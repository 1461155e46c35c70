package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	keyRoot       = "storefront"
	idempotencyNS = "idem"
	rateLimitNS   = "rl"
)

var errNotConnected = errors.New("redis client not connected")

// commands is the slice of go-redis used here; tests substitute a map-backed fake.
type commands interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	ExpireNX(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Pinger is the readiness probe surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Window is the outcome of one hit against a fixed-window counter.
type Window struct {
	Allowed    bool
	Count      int64
	RetryAfter time.Duration
}

// ResponseStore persists replayable responses keyed by Idempotency-Key.
type ResponseStore interface {
	IdempotencyKey(scope, id string) string
	Claim(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Load(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key, value string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// Client backs auth rate limiting and idempotent writes.
type Client struct {
	cmds commands
	conn *redis.Client
}

// New connects using either STOREFRONT_REDIS_URL or the discrete address
// settings and fails fast when the server does not answer PING.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	conn := redis.NewClient(opts)
	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"addr": opts.Addr, "db": opts.DB}), "redis connected")
	}
	return &Client{cmds: conn, conn: conn}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	case cfg.Address != "":
		opts = &redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB}
	default:
		return nil, errors.New("redis url or address is required")
	}

	// URL values win; config only fills what the URL left unset.
	fill := func(dst *int, v int) {
		if *dst == 0 {
			*dst = v
		}
	}
	fillDur := func(dst *time.Duration, v time.Duration) {
		if *dst == 0 {
			*dst = v
		}
	}
	fill(&opts.DB, cfg.DB)
	fill(&opts.PoolSize, cfg.PoolSize)
	fill(&opts.MinIdleConns, cfg.MinIdleConns)
	fillDur(&opts.DialTimeout, cfg.DialTimeout)
	fillDur(&opts.ReadTimeout, cfg.ReadTimeout)
	fillDur(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

// Hit counts one attempt in the window identified by scope. The expiry is set
// with NX so a counter left without a TTL heals on the next hit.
func (c *Client) Hit(ctx context.Context, scope string, limit int64, window time.Duration) (Window, error) {
	if c.cmds == nil {
		return Window{}, errNotConnected
	}
	key := c.RateLimitKey(scope)
	count, err := c.cmds.Incr(ctx, key).Result()
	if err != nil {
		return Window{}, fmt.Errorf("incr %s: %w", key, err)
	}
	if err := c.cmds.ExpireNX(ctx, key, window).Err(); err != nil {
		return Window{}, fmt.Errorf("expire %s: %w", key, err)
	}

	result := Window{Allowed: count <= limit, Count: count}
	if !result.Allowed {
		ttl, err := c.cmds.PTTL(ctx, key).Result()
		if err != nil || ttl <= 0 {
			ttl = window
		}
		result.RetryAfter = ttl
	}
	return result, nil
}

// Claim stores value only when key is free.
func (c *Client) Claim(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if c.cmds == nil {
		return false, errNotConnected
	}
	return c.cmds.SetNX(ctx, key, value, ttl).Result()
}

// Load reports ok=false for a missing key rather than surfacing redis.Nil.
func (c *Client) Load(ctx context.Context, key string) (string, bool, error) {
	if c.cmds == nil {
		return "", false, errNotConnected
	}
	value, err := c.cmds.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Save overwrites key unconditionally.
func (c *Client) Save(ctx context.Context, key, value string, ttl time.Duration) error {
	if c.cmds == nil {
		return errNotConnected
	}
	return c.cmds.Set(ctx, key, value, ttl).Err()
}

func (c *Client) Release(ctx context.Context, key string) error {
	if c.cmds == nil {
		return errNotConnected
	}
	return c.cmds.Del(ctx, key).Err()
}

func (c *Client) IdempotencyKey(scope, id string) string {
	return joinKey(idempotencyNS, scope, id)
}

func (c *Client) RateLimitKey(scope string) string {
	return joinKey(rateLimitNS, scope)
}

func (c *Client) Ping(ctx context.Context) error {
	if c.cmds == nil {
		return errNotConnected
	}
	return c.cmds.Ping(ctx).Err()
}

// Close is safe on a client that never connected.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func joinKey(parts ...string) string {
	out := make([]string, 1, len(parts)+1)
	out[0] = keyRoot
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, ":")
}
