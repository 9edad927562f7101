package sdk

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	refreshFlightKey      = "session-refresh"
	defaultRefreshTimeout = 30 * time.Second
)

// RefreshFunc performs one token refresh. It must persist the new pair
// before returning nil.
type RefreshFunc func(ctx context.Context) error

// RefreshCoordinator guarantees that at most one refresh runs at a time.
// Callers arriving while a refresh is in flight join it and share its outcome.
type RefreshCoordinator struct {
	group   singleflight.Group
	active  atomic.Bool
	started atomic.Int64
	timeout time.Duration
}

// NewRefreshCoordinator bounds each refresh by timeout (30s when <= 0).
func NewRefreshCoordinator(timeout time.Duration) *RefreshCoordinator {
	if timeout <= 0 {
		timeout = defaultRefreshTimeout
	}
	return &RefreshCoordinator{timeout: timeout}
}

// BeginOrJoin starts fn unless a refresh is already running, in which case
// the caller joins the running one. The refresh keeps ctx's values but not
// its cancellation; only the coordinator timeout bounds it.
func (c *RefreshCoordinator) BeginOrJoin(ctx context.Context, fn RefreshFunc) *RefreshFuture {
	ch := c.group.DoChan(refreshFlightKey, func() (any, error) {
		c.active.Store(true)
		defer c.active.Store(false)
		c.started.Add(1)

		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return nil, fn(runCtx)
	})
	return &RefreshFuture{ch: ch}
}

// Refreshing reports whether a refresh is in flight.
func (c *RefreshCoordinator) Refreshing() bool { return c.active.Load() }

// Started returns how many refreshes have been started over the coordinator's lifetime.
func (c *RefreshCoordinator) Started() int64 { return c.started.Load() }

// RefreshFuture is the shared outcome of one refresh.
type RefreshFuture struct {
	ch <-chan singleflight.Result
}

// Wait blocks until the refresh resolves or ctx ends. Shared reports whether
// the outcome was delivered to more than one caller.
func (f *RefreshFuture) Wait(ctx context.Context) (shared bool, err error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-f.ch:
		return res.Shared, res.Err
	}
}
