// ABOUTME: Refresh worker rebuilds the template catalog on a cron schedule
// ABOUTME: Runs never overlap; a run that finds one in progress is skipped

package workers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"mememe-api/core/domain"
	"mememe-api/core/interfaces"

	"github.com/mileusna/crontab"
)

// DefaultSchedule rebuilds the catalog at the top of every sixth hour
const DefaultSchedule = "0 */6 * * *"

// Rebuilder rebuilds and persists the catalog
type Rebuilder interface {
	Rebuild(ctx context.Context) (*domain.TemplateCatalog, error)
}

// RefreshWorker schedules catalog rebuilds
type RefreshWorker struct {
	rebuilder Rebuilder
	logger    interfaces.Logger
	schedule  string
	timeout   time.Duration

	ctab    *crontab.Crontab
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	running bool
	busy    atomic.Bool
	wg      sync.WaitGroup
}

// WorkerConfig holds configuration for the refresh worker
type WorkerConfig struct {
	Schedule string

	// Timeout bounds a single rebuild
	Timeout time.Duration
}

// DefaultWorkerConfig returns the default worker configuration
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Schedule: DefaultSchedule,
		Timeout:  2 * time.Minute,
	}
}

// NewRefreshWorker creates a refresh worker. It does nothing until Start is called.
func NewRefreshWorker(rebuilder Rebuilder, logger interfaces.Logger, config WorkerConfig) *RefreshWorker {
	defaults := DefaultWorkerConfig()
	if config.Schedule == "" {
		config.Schedule = defaults.Schedule
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &RefreshWorker{
		rebuilder: rebuilder,
		logger:    logger,
		schedule:  config.Schedule,
		timeout:   config.Timeout,
	}
}

// Start registers the cron job
func (w *RefreshWorker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	ctab := crontab.New()
	if err := ctab.AddJob(w.schedule, func() { _ = w.RunOnce(ctx) }); err != nil {
		cancel()
		ctab.Shutdown()
		return &WorkerError{Message: "invalid refresh schedule " + w.schedule + ": " + err.Error()}
	}

	w.ctab = ctab
	w.ctx = ctx
	w.cancel = cancel
	w.running = true

	w.info("Refresh worker started", map[string]interface{}{"schedule": w.schedule})
	return nil
}

// Stop removes the cron job, cancels an in-flight rebuild and waits for it to return
func (w *RefreshWorker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.ctab.Shutdown()
	w.cancel()
	w.wg.Wait()
	w.running = false

	w.info("Refresh worker stopped", nil)
	return nil
}

// Running reports whether the cron job is registered
func (w *RefreshWorker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// RunOnce rebuilds the catalog now. It returns ErrRefreshInProgress when another
// rebuild has not finished.
func (w *RefreshWorker) RunOnce(ctx context.Context) error {
	if !w.busy.CompareAndSwap(false, true) {
		w.info("Catalog refresh already running, skipping", nil)
		return ErrRefreshInProgress
	}
	defer w.busy.Store(false)

	w.wg.Add(1)
	defer w.wg.Done()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	catalog, err := w.rebuilder.Rebuild(ctx)
	if err != nil {
		if w.logger != nil {
			w.logger.Error("Scheduled catalog refresh failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return err
	}

	w.info("Scheduled catalog refresh complete", map[string]interface{}{
		"templates":   catalog.TotalCount,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func (w *RefreshWorker) info(msg string, fields map[string]interface{}) {
	if w.logger != nil {
		w.logger.Info(msg, fields)
	}
}

// Error definitions
var (
	ErrRefreshInProgress = &WorkerError{Message: "catalog refresh already in progress"}
)

// WorkerError represents a worker-specific error
type WorkerError struct {
	Message string
}

func (e *WorkerError) Error() string {
	return e.Message
}
