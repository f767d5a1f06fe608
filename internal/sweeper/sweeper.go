// Package sweeper runs the recurring deadline sweep that closes auctions
// whose end time has passed.
package sweeper

import (
	"context"
	"time"

	"car-auction/utils"
)

// SweepService is the single entry point the sweeper drives. The sweep is
// idempotent, so overlapping or repeated runs are harmless.
type SweepService interface {
	SweepExpiredAuctions(ctx context.Context) (int, error)
}

// Sweeper invokes the deadline sweep on a fixed interval.
type Sweeper struct {
	service  SweepService
	interval time.Duration
}

// New creates a Sweeper with the given interval.
func New(service SweepService, interval time.Duration) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
	}
}

// Run sweeps immediately, then on every tick until the context is
// cancelled. A failed sweep is logged and the loop continues.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	closed, err := s.service.SweepExpiredAuctions(ctx)
	if err != nil {
		utils.Error("deadline sweep failed", map[string]any{"error": err.Error()})
		return
	}
	if closed > 0 {
		utils.Info("deadline sweep closed auctions", map[string]any{"closed": closed})
	}
}
