// Package limiter implements the per-identity search budget: a fixed number
// of points per rolling window, consumed once per submission. Two budgets
// exist side by side, a smaller one for anonymous callers keyed by client IP
// and a larger one for authenticated callers keyed by user id; the caller's
// authentication state at request time selects which one applies.
//
// Consumption is atomic per key (the store's windowed counter), so
// concurrent submissions from the same identity cannot both slip past the
// budget boundary.
package limiter

import (
	"context"
	"errors"

	"github.com/web3insight/go-insight-backend/internal/cache"
	"github.com/web3insight/go-insight-backend/internal/config"
)

// ErrLimitExceeded is returned by Consume once the identity's budget for
// the current window is spent.
var ErrLimitExceeded = errors.New("search limit exceeded")

// PointsLimiter enforces one points-per-window budget over a cache.Store.
type PointsLimiter struct {
	store  cache.Store
	prefix string
	rate   config.RateConfig
}

// New builds a PointsLimiter. The prefix namespaces this limiter's counters
// in the shared store (e.g. "guest_search_limiter", "user_search_limiter").
func New(store cache.Store, prefix string, rate config.RateConfig) *PointsLimiter {
	return &PointsLimiter{store: store, prefix: prefix, rate: rate}
}

// Consume atomically spends one point for identity. It returns
// ErrLimitExceeded when the budget for the current window is exhausted;
// the window rolls forward relative to the identity's first consumption.
func (l *PointsLimiter) Consume(ctx context.Context, identity string) error {
	count, err := l.store.IncrWindow(ctx, l.prefix+":"+identity, l.rate.Window)
	if err != nil {
		return err
	}
	if count > int64(l.rate.Points) {
		return ErrLimitExceeded
	}
	return nil
}
