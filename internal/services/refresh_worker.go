package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CatalogReloader is satisfied by CatalogService.
type CatalogReloader interface {
	Reload(ctx context.Context) (int, error)
}

// RefreshWorker reloads the catalog on a fixed interval so new packs and ban
// lists show up without an operator reload.
type RefreshWorker struct {
	reloader CatalogReloader
	interval time.Duration
	logger   *zap.Logger

	mu          sync.RWMutex
	lastAttempt time.Time
	lastSuccess time.Time
	lastError   string
}

type RefreshStatus struct {
	Interval    time.Duration `json:"interval"`
	LastAttempt time.Time     `json:"last_attempt,omitempty"`
	LastSuccess time.Time     `json:"last_success,omitempty"`
	LastError   string        `json:"last_error,omitempty"`
	NextAttempt time.Time     `json:"next_attempt,omitempty"`
}

func NewRefreshWorker(reloader CatalogReloader, interval time.Duration, logger *zap.Logger) *RefreshWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshWorker{
		reloader: reloader,
		interval: interval,
		logger:   logger,
	}
}

// Start blocks until ctx is done. The first reload happens one interval after
// start; the initial catalog is loaded by the caller.
func (w *RefreshWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info("catalog refresh worker disabled")
		return
	}
	w.logger.Info("catalog refresh worker started", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("catalog refresh worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *RefreshWorker) refresh(ctx context.Context) {
	now := time.Now()
	count, err := w.reloader.Reload(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastAttempt = now
	if err != nil {
		w.lastError = err.Error()
		w.logger.Warn("scheduled catalog refresh failed", zap.Error(err))
		return
	}
	w.lastError = ""
	w.lastSuccess = now
	w.logger.Info("scheduled catalog refresh complete", zap.Int("cards", count))
}

func (w *RefreshWorker) Status() RefreshStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	status := RefreshStatus{
		Interval:    w.interval,
		LastAttempt: w.lastAttempt,
		LastSuccess: w.lastSuccess,
		LastError:   w.lastError,
	}
	if w.interval > 0 && !w.lastAttempt.IsZero() {
		status.NextAttempt = w.lastAttempt.Add(w.interval)
	}
	return status
}
