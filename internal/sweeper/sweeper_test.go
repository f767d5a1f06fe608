package sweeper

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingService struct {
	calls atomic.Int64
	err   error
}

func (c *countingService) SweepExpiredAuctions(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return 0, c.err
}

func TestSweeper_RunsOnInterval(t *testing.T) {
	t.Parallel()

	svc := &countingService{}
	s := New(svc, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return svc.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond, "sweep should run immediately and then on every tick")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancellation")
	}
}

func TestSweeper_ContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	svc := &countingService{err: context.DeadlineExceeded}
	s := New(svc, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	require.Eventually(t, func() bool {
		return svc.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond, "a failed sweep must not stop the loop")
}
