package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"spotboard/internal/observability"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

const denyKeyPrefix = "logout:"

// DenyList remembers logged out tokens until they expire. All Redis calls
// go through a circuit breaker; an open breaker is an error, never "allowed".
type DenyList struct {
	rdb *redis.Client
	cb  *gobreaker.CircuitBreaker[bool]
	now func() time.Time
}

// NewDenyList returns a deny-list backed by rdb. A nil client disables it:
// Revoke does nothing and IsRevoked always reports false.
func NewDenyList(rdb *redis.Client, logger *slog.Logger) *DenyList {
	settings := gobreaker.Settings{
		Name:        "redis-denylist",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.BreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}
	return &DenyList{
		rdb: rdb,
		cb:  gobreaker.NewCircuitBreaker[bool](settings),
		now: time.Now,
	}
}

func (d *DenyList) Enabled() bool { return d != nil && d.rdb != nil }

// Revoke deny-lists token until expiresAt.
func (d *DenyList) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if !d.Enabled() {
		return nil
	}
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	_, err := d.cb.Execute(func() (bool, error) {
		return true, d.rdb.Set(ctx, denyKey(token), 1, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (d *DenyList) IsRevoked(ctx context.Context, token string) (bool, error) {
	if !d.Enabled() {
		return false, nil
	}
	revoked, err := d.cb.Execute(func() (bool, error) {
		n, err := d.rdb.Exists(ctx, denyKey(token)).Result()
		return n > 0, err
	})
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

func denyKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return denyKeyPrefix + hex.EncodeToString(sum[:])
}
