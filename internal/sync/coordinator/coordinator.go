package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/kanade-dev/extrepo/internal/config"
	"github.com/kanade-dev/extrepo/internal/status"
	"github.com/kanade-dev/extrepo/internal/telemetry"
)

const (
	// jitterFraction is the maximum random offset applied to the interval, as a fraction of it
	jitterFraction = 0.1

	// fallbackInterval replaces a non-positive interval
	fallbackInterval = 6 * time.Hour
)

// Refresher is the part of the repository service the coordinator drives
type Refresher interface {
	RefreshAll(ctx context.Context)
	Count(ctx context.Context) (int, error)
}

// Coordinator manages the background refresh loop
type Coordinator interface {
	// Start runs an initial refresh and then refreshes periodically.
	// Blocks until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop cancels the loop and waits for it to exit
	Stop() error
}

type defaultCoordinator struct {
	refresher Refresher
	interval  time.Duration

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}

	refreshMetrics *telemetry.RefreshMetrics
	statusStore    status.StatusPersistence
}

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// WithRefreshMetrics records the duration of every refresh pass
func WithRefreshMetrics(metrics *telemetry.RefreshMetrics) Option {
	return func(c *defaultCoordinator) {
		c.refreshMetrics = metrics
	}
}

// WithStatusPersistence records the phase of every refresh pass
func WithStatusPersistence(p status.StatusPersistence) Option {
	return func(c *defaultCoordinator) {
		c.statusStore = p
	}
}

// WithInterval overrides the configured refresh interval
func WithInterval(interval time.Duration) Option {
	return func(c *defaultCoordinator) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// New creates a coordinator refreshing through refresher at cfg's sync interval
func New(refresher Refresher, cfg *config.Config, opts ...Option) Coordinator {
	c := &defaultCoordinator{
		refresher: refresher,
		interval:  cfg.GetSyncInterval(),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.interval <= 0 {
		c.interval = fallbackInterval
	}

	return c
}

// jitteredInterval returns base offset by a random amount within ±jitterFraction of it
func jitteredInterval(base time.Duration) time.Duration {
	jitter := time.Duration(float64(base) * jitterFraction)
	if jitter <= 0 {
		return base
	}
	//nolint:gosec // G404: Non-cryptographic randomness is sufficient for refresh jitter
	offset := time.Duration(rand.Int64N(int64(2*jitter))) - jitter
	return base + offset
}

func (c *defaultCoordinator) Start(ctx context.Context) error {
	coordCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelFunc = cancel
	c.mu.Unlock()
	defer func() {
		cancel()
		close(c.done)
		slog.Info("Background refresh coordinator shut down")
	}()

	interval := jitteredInterval(c.interval)
	slog.Info("Starting background refresh coordinator",
		"base_interval", c.interval,
		"actual_interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.refresh(coordCtx)

	for {
		select {
		case <-ticker.C:
			c.refresh(coordCtx)
			ticker.Reset(jitteredInterval(c.interval))
		case <-coordCtx.Done():
			slog.Info("Refresh coordinator stopping")
			return nil
		}
	}
}

func (c *defaultCoordinator) Stop() error {
	c.mu.Lock()
	cancel := c.cancelFunc
	c.mu.Unlock()

	if cancel != nil {
		slog.Info("Stopping refresh coordinator")
		cancel()
		<-c.done
	}
	return nil
}

// refresh runs one pass over all repositories
func (c *defaultCoordinator) refresh(ctx context.Context) {
	start := time.Now()
	st := c.beginStatus(ctx, start)

	c.refresher.RefreshAll(ctx)
	duration := time.Since(start)

	if ctx.Err() != nil {
		c.finishStatus(context.WithoutCancel(ctx), st, status.RefreshPhaseFailed, "refresh interrupted", 0)
		return
	}

	count, err := c.refresher.Count(ctx)
	c.refreshMetrics.RecordRefresh(ctx, duration, err == nil)
	if err != nil {
		slog.Error("Refresh pass could not count repositories", "error", err)
		c.finishStatus(ctx, st, status.RefreshPhaseFailed, err.Error(), 0)
		return
	}
	slog.Info("Refresh pass completed", "repo_count", count, "duration", duration)
	c.finishStatus(ctx, st, status.RefreshPhaseComplete, fmt.Sprintf("Refreshed %d repositories", count), count)
}

// beginStatus marks a pass as started. It returns nil when no status is tracked.
func (c *defaultCoordinator) beginStatus(ctx context.Context, start time.Time) *status.RefreshStatus {
	if c.statusStore == nil {
		return nil
	}

	st, err := c.statusStore.LoadStatus(ctx)
	if err != nil {
		slog.Warn("Failed to load refresh status, starting fresh", "error", err)
		st = &status.RefreshStatus{}
	}

	st.Phase = status.RefreshPhaseRefreshing
	st.Message = ""
	st.LastAttempt = &start
	st.AttemptCount++
	st.Interval = c.interval.String()
	c.saveStatus(ctx, st)
	return st
}

func (c *defaultCoordinator) finishStatus(
	ctx context.Context, st *status.RefreshStatus, phase status.RefreshPhase, message string, count int,
) {
	if st == nil {
		return
	}

	st.Phase = phase
	st.Message = message
	if phase == status.RefreshPhaseComplete {
		now := time.Now()
		st.LastRefreshTime = &now
		st.AttemptCount = 0
		st.RepoCount = count
	}
	c.saveStatus(ctx, st)
}

func (c *defaultCoordinator) saveStatus(ctx context.Context, st *status.RefreshStatus) {
	if err := c.statusStore.SaveStatus(ctx, st); err != nil {
		slog.Warn("Failed to save refresh status", "phase", st.Phase, "error", err)
	}
}
