package main

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/salacoste/swagger-mcp-server/internal/apperr"
)

// requestLimiter bounds in-flight tool/resource handlers to
// server.max_connections and caps each one at server.timeout, the two
// serving limits ServerConfig names.
type requestLimiter struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

func newRequestLimiter(maxConnections int, timeout time.Duration) *requestLimiter {
	if maxConnections <= 0 {
		maxConnections = 1
	}
	return &requestLimiter{
		sem:     semaphore.NewWeighted(int64(maxConnections)),
		timeout: timeout,
	}
}

// acquire blocks until a slot is free or ctx is done, returning a release
// func to call when the handler finishes.
func (l *requestLimiter) acquire(ctx context.Context) (func(), error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, apperr.Overloaded("too many concurrent requests: %v", err)
	}
	return func() { l.sem.Release(1) }, nil
}

// deadline derives a per-request context bounded by server.timeout.
func (l *requestLimiter) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, l.timeout)
}
