package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ndelgado/cargotrack/internal/domain/model"
)

// RateFacade exposes the subset of application functionality required by
// the maintenance worker.
type RateFacade interface {
	ResolveRate(ctx context.Context) (*model.RateResolution, error)
	SweepRateHistory(ctx context.Context, cutoff time.Time) (int64, error)
}

// RateMaintainer keeps the rate history healthy in the background: it
// periodically sweeps records past the retention horizon and, when a
// refresh interval is configured, resolves a fresh rate so the history
// stays warm for the fallback chain.
type RateMaintainer struct {
	facade          RateFacade
	sweepInterval   time.Duration
	retention       time.Duration
	refreshInterval time.Duration
	logger          *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewRateMaintainer constructs the worker. refreshInterval of zero
// disables the warm-up loop.
func NewRateMaintainer(facade RateFacade, sweepInterval, retention, refreshInterval time.Duration, logger *slog.Logger) *RateMaintainer {
	if sweepInterval <= 0 {
		sweepInterval = time.Hour
	}
	return &RateMaintainer{
		facade:          facade,
		sweepInterval:   sweepInterval,
		retention:       retention,
		refreshInterval: refreshInterval,
		logger:          logger,
	}
}

// Start launches background maintenance.
func (m *RateMaintainer) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go m.sweepLoop(runCtx)

	if m.refreshInterval > 0 {
		m.wg.Add(1)
		go m.refreshLoop(runCtx)
	}
}

// Stop waits for running loops to finish.
func (m *RateMaintainer) Stop() {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *RateMaintainer) sweepLoop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

func (m *RateMaintainer) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-m.retention)
	deleted, err := m.facade.SweepRateHistory(ctx, cutoff)
	if err != nil {
		m.logger.Error("rate history sweep failed", slog.String("error", err.Error()))
		return
	}
	if deleted > 0 {
		m.logger.Info("rate history swept", slog.Int64("deleted", deleted))
	}
}

func (m *RateMaintainer) refreshLoop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.facade.ResolveRate(ctx); err != nil {
				m.logger.Error("background rate refresh failed", slog.String("error", err.Error()))
			}
		}
	}
}
