package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// failureWindow is how long a streak of failures counts against a caller.
	failureWindow = 15 * time.Minute
	// maxFailures is the streak length that triggers a block.
	maxFailures = 10
)

// LoginLimiter throttles repeated failed logins per username+IP pair,
// backed by Redis. Key format: loginfail:<username>:<ip>
//
// The limiter degrades open: when Redis is unreachable, logins proceed
// unthrottled rather than locking everyone out.
type LoginLimiter struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewLoginLimiter(client *redis.Client, log zerolog.Logger) *LoginLimiter {
	return &LoginLimiter{client: client, log: log}
}

// Blocked reports whether this username+IP pair has exhausted its failure
// budget for the current window.
func (l *LoginLimiter) Blocked(ctx context.Context, username, ip string) bool {
	n, err := l.client.Get(ctx, l.key(username, ip)).Int64()
	if err != nil {
		if err != redis.Nil {
			l.log.Warn().Err(err).Msg("login limiter unavailable, allowing attempt")
		}
		return false
	}
	return n >= maxFailures
}

// RecordFailure bumps the failure counter. The window starts at the first
// failure of a streak; later failures do not extend it.
func (l *LoginLimiter) RecordFailure(ctx context.Context, username, ip string) {
	key := l.key(username, ip)

	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, failureWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		l.log.Warn().Err(err).Msg("login limiter failed to record attempt")
	}
}

func (l *LoginLimiter) key(username, ip string) string {
	return fmt.Sprintf("loginfail:%s:%s", username, ip)
}
