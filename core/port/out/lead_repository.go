// Package out defines the outbound ports of the lead backend.
package out

import (
	"context"
	"time"

	"lead_server/core/domain"
)

// ScoringUpdate is the recomputed field set written by the re-score path.
type ScoringUpdate struct {
	Score    int
	Priority domain.LeadPriority
	Insights domain.LeadInsights
	Tags     []string
}

// LeadRepository persists lead records in the document store.
type LeadRepository interface {
	EnsureIndexes(ctx context.Context) error

	Insert(ctx context.Context, lead *domain.LeadRecord) error
	GetByID(ctx context.Context, id string) (*domain.LeadRecord, error)

	// ListForRescore returns up to limit leads eligible for re-scoring.
	// Unless force is set, only records missing a score or priority match.
	// An optional id list narrows the candidate set.
	ListForRescore(ctx context.Context, ids []string, force bool, limit int) ([]*domain.LeadRecord, error)

	// SaveScoring applies a recomputed score/priority/insights/tags set and
	// refreshes updated_at.
	SaveScoring(ctx context.Context, id string, upd *ScoringUpdate) error

	// SaveEnrichment applies derived firmographic fields and refreshes
	// updated_at.
	SaveEnrichment(ctx context.Context, id string, upd *domain.EnrichmentUpdate) error

	// Search compiles the criteria into a filter -> paginate -> facet
	// pipeline against the store.
	Search(ctx context.Context, criteria *domain.LeadSearchCriteria) (*domain.LeadSearchResult, error)
}

// ErrorLogRepository persists client error reports.
type ErrorLogRepository interface {
	EnsureIndexes(ctx context.Context) error

	Insert(ctx context.Context, report *domain.ErrorReport) error
	Search(ctx context.Context, criteria *domain.ErrorSearchCriteria) (*domain.ErrorSearchResult, error)
}

// LeadChangeFeed exposes the store's insert feed for the notification watcher.
// Resume tokens are opaque to callers and survive process restarts through
// Load/SaveResumeToken.
type LeadChangeFeed interface {
	LoadResumeToken(ctx context.Context, name string) (any, error)
	SaveResumeToken(ctx context.Context, name string, token any) error

	// PollInserts consumes the insert feed for at most window, returning the
	// captured leads and the last seen resume token.
	PollInserts(ctx context.Context, token any, window, pollInterval time.Duration) ([]*domain.LeadRecord, any, error)
}

// LeadNotifier delivers lead alerts to an external channel.
type LeadNotifier interface {
	NotifyLead(ctx context.Context, lead *domain.LeadRecord) error
}

// JobProducer enqueues background jobs.
type JobProducer interface {
	EnqueueLeadEnrich(ctx context.Context, leadID string) (string, error)
}
