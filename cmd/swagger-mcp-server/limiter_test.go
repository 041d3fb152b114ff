package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRequestLimiterAcquireReleaseRoundTrips(t *testing.T) {
	l := newRequestLimiter(1, time.Second)
	release, err := l.acquire(context.Background())
	require.NoError(t, err)
	release()

	release2, err := l.acquire(context.Background())
	require.NoError(t, err)
	release2()
}

func TestRequestLimiterBlocksBeyondCapacity(t *testing.T) {
	l := newRequestLimiter(1, time.Second)
	release, err := l.acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.acquire(ctx)
	require.Error(t, err)
}

func TestRequestLimiterDeadlineAppliesTimeout(t *testing.T) {
	l := newRequestLimiter(5, 10*time.Millisecond)
	ctx, cancel := l.deadline(context.Background())
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected deadline to fire")
	}
}

func TestRequestLimiterZeroTimeoutNeverExpires(t *testing.T) {
	l := newRequestLimiter(5, 0)
	ctx, cancel := l.deadline(context.Background())
	defer cancel()

	select {
	case <-ctx.Done():
		t.Fatal("did not expect deadline to fire")
	case <-time.After(50 * time.Millisecond):
	}
}
