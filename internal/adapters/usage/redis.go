package usage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Redis keeps the counters in a hash so several instances share them.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// RedisOption configures a Redis recorder.
type RedisOption func(*Redis)

// WithPrefix sets the key prefix (default "medaldash:usage").
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if p := strings.Trim(prefix, ":"); p != "" {
			r.prefix = p
		}
	}
}

// NewRedis returns a recorder writing through rdb.
func NewRedis(rdb *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{rdb: rdb, prefix: "medaldash:usage"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements Recorder.
func (r *Redis) Name() string { return "redis" }

func (r *Redis) sportsKey() string { return r.prefix + ":sports" }
func (r *Redis) totalKey() string  { return r.prefix + ":total" }

// Record implements Recorder with one pipelined round trip.
func (r *Redis) Record(ctx context.Context, sport string) error {
	if r == nil || r.rdb == nil {
		return nil
	}
	pipe := r.rdb.Pipeline()
	pipe.HIncrBy(ctx, r.sportsKey(), Key(sport), 1)
	pipe.Incr(ctx, r.totalKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// Counts implements Recorder.
func (r *Redis) Counts(ctx context.Context) (map[string]int64, error) {
	if r == nil || r.rdb == nil {
		return map[string]int64{}, nil
	}
	raw, err := r.rdb.HGetAll(ctx, r.sportsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("read usage: %w", err)
	}
	out := make(map[string]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("usage counter %s: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}
