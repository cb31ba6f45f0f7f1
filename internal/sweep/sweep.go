// Package sweep periodically triggers the subscription expiry function. The
// hosted platform owns the logic; this runner only owns the schedule.
package sweep

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kehila-platform/kehila/pkg/store"
)

type Sweeper struct {
	fns      store.Functions
	interval time.Duration
	logger   *slog.Logger
	stop     chan struct{}
	wg       sync.WaitGroup
}

func New(fns store.Functions, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		fns:      fns,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start launches the sweep loop. One sweep runs immediately; failures are
// logged and dropped, the next tick is the retry.
func (s *Sweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop signals the loop to exit and waits for it.
func (s *Sweeper) Stop() {
	close(s.stop)
	s.wg.Wait()
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			s.logger.Info("sweeper stopping")
			return
		case <-ctx.Done():
			s.logger.Info("context canceled, sweeper exiting")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	res, err := s.fns.Invoke(ctx, store.FnExpireSubscriptions, nil)
	if err != nil {
		s.logger.Error("subscription sweep failed", "err", err)
		return
	}
	s.logger.Info("subscription sweep completed", "result", string(res))
}
