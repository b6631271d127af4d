// Package watcher turns the store's insert feed into outbound lead alerts.
package watcher

import (
	"context"
	"time"

	"lead_server/core/domain"
	"lead_server/core/port/out"

	"github.com/rs/zerolog"
)

// =============================================================================
// Change Watcher
// =============================================================================

// Config tunes one watcher instance.
type Config struct {
	// Name keys the resume token in the store; two watchers sharing a name
	// share a cursor.
	Name string

	// MinPriority gates alerts: only leads at or above this priority notify.
	MinPriority domain.LeadPriority

	// Window bounds one feed poll; PollInterval is the idle wait inside it.
	Window       time.Duration
	PollInterval time.Duration
}

// Watcher drains the lead insert feed and notifies on qualifying leads.
// The resume token persists after every poll, so a restarted watcher picks
// up where the previous run stopped instead of re-alerting.
type Watcher struct {
	feed     out.LeadChangeFeed
	notifier out.LeadNotifier
	cfg      Config
	log      zerolog.Logger
}

func New(feed out.LeadChangeFeed, notifier out.LeadNotifier, cfg Config, log zerolog.Logger) *Watcher {
	if cfg.Window <= 0 {
		cfg.Window = 5 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}
	return &Watcher{
		feed:     feed,
		notifier: notifier,
		cfg:      cfg,
		log:      log.With().Str("component", "watcher").Str("watcher", cfg.Name).Logger(),
	}
}

// Run polls until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	token, err := w.feed.LoadResumeToken(ctx, w.cfg.Name)
	if err != nil {
		return err
	}
	if token != nil {
		w.log.Info().Msg("resuming from stored token")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		leads, next, err := w.feed.PollInserts(ctx, token, w.cfg.Window, w.cfg.PollInterval)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Error().Err(err).Msg("feed poll failed")
			time.Sleep(w.cfg.Window)
			continue
		}

		for _, lead := range leads {
			w.handle(ctx, lead)
		}

		if next != nil {
			token = next
			if err := w.feed.SaveResumeToken(ctx, w.cfg.Name, token); err != nil {
				w.log.Error().Err(err).Msg("failed to persist resume token")
			}
		}
	}
}

func (w *Watcher) handle(ctx context.Context, lead *domain.LeadRecord) {
	if domain.PriorityRank(lead.Priority) < domain.PriorityRank(w.cfg.MinPriority) {
		return
	}

	if err := w.notifier.NotifyLead(ctx, lead); err != nil {
		// Alerting is best effort; the lead itself is already stored.
		w.log.Error().Err(err).
			Str("lead_id", lead.ID).
			Str("priority", string(lead.Priority)).
			Msg("lead alert delivery failed")
		return
	}

	w.log.Info().
		Str("lead_id", lead.ID).
		Str("priority", string(lead.Priority)).
		Int("score", lead.Score).
		Msg("lead alert sent")
}
