package bootstrap

import (
	"context"
	"sync"

	"lead_server/adapter/in/watcher"
	"lead_server/config"
	"lead_server/core/domain"
	"lead_server/internal/stream"
	"lead_server/pkg/logger"
)

// Worker runs the background side of the service: the enrichment stream
// consumer and the change-feed alert watcher.
type Worker struct {
	deps     *Dependencies
	consumer *stream.Consumer
	watcher  *watcher.Watcher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWorker(cfg *config.Config, deps *Dependencies) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		deps:   deps,
		ctx:    ctx,
		cancel: cancel,
	}

	if deps.Stream != nil {
		w.consumer = stream.NewConsumer(deps.Stream, deps.LeadService, cfg.WatcherID, deps.ZLog)
	} else {
		logger.Warn("Redis not available, enrichment runs on demand only")
	}

	if deps.Notifier.Enabled() {
		// The token name stays stable across restarts; WatcherID is per
		// process and only identifies the stream consumer.
		w.watcher = watcher.New(deps.Feed, deps.Notifier, watcher.Config{
			Name:         "lead-alerts",
			MinPriority:  domain.LeadPriority(cfg.AlertMinPriority),
			Window:       cfg.WatcherWindow,
			PollInterval: cfg.WatcherPollInterval,
		}, deps.ZLog)
	} else {
		logger.Warn("No alert webhook configured, lead alerting disabled")
	}

	return w
}

func (w *Worker) Start() {
	if w.consumer != nil {
		w.consumer.Start(w.ctx)
		logger.Info("Enrichment consumer started")
	}

	if w.watcher != nil {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			if err := w.watcher.Run(w.ctx); err != nil && err != context.Canceled {
				logger.WithError(err).Error("Change watcher stopped")
			}
		}()
		logger.Info("Change watcher started")
	}

	<-w.ctx.Done()
}

func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
}
