// Package worker hosts the background loops that run beside the HTTP server.
package worker

import (
	"context"
	"time"

	ordersvc "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/service"
	"github.com/orimhanre/distrinaranjos-sub004/internal/logger"
)

// PurgeWorker periodically removes archived orders whose retention deadline
// has passed, across every configured environment.
type PurgeWorker struct {
	lifecycles []*ordersvc.LifecycleManager
	interval   time.Duration
}

// NewPurgeWorker builds the worker over the lifecycle managers of all
// environments. Intervals under a minute are clamped to the default hour.
func NewPurgeWorker(lifecycles []*ordersvc.LifecycleManager, interval time.Duration) *PurgeWorker {
	if interval < time.Minute {
		interval = time.Hour
	}
	return &PurgeWorker{lifecycles: lifecycles, interval: interval}
}

// Start runs the purge loop until the context is cancelled. A panic in one
// pass is recovered and the next tick runs normally.
func (w *PurgeWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithField("interval", w.interval.String()).Info("Starting archive purge worker")

	for {
		select {
		case <-ctx.Done():
			log.Info("Archive purge worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *PurgeWorker) runOnce(ctx context.Context) {
	log := logger.GetAppLogger()
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Panic during archive purge, will retry next tick")
		}
	}()

	now := time.Now()
	for _, lifecycle := range w.lifecycles {
		result, err := lifecycle.PurgeExpired(ctx, now)
		if err != nil {
			log.WithError(err).Error("Archive purge pass failed")
			continue
		}
		if result.Purged > 0 || result.Outcome.Failed > 0 {
			log.WithFields(map[string]interface{}{
				"purged": result.Purged,
				"failed": result.Outcome.Failed,
			}).Info("Archive purge pass finished")
		}
	}
}
