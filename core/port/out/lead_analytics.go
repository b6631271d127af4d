package out

import (
	"context"
	"time"

	"lead_server/core/domain"
)

// TrendPoint is one interval bucket of a daily/weekly/monthly series.
type TrendPoint struct {
	Interval string `json:"interval" bson:"_id"`
	Count    int64  `json:"count" bson:"count"`
}

// LeadSummaryStats aggregates lead volume for the analytics summary.
type LeadSummaryStats struct {
	Total          int64            `json:"total"`
	PeriodTotal    int64            `json:"period_total"`
	ByType         map[string]int64 `json:"by_type"`
	ByBusinessType map[string]int64 `json:"by_business_type"`
	DailyTrend     []TrendPoint     `json:"daily_trend"`
}

// ErrorSummaryStats aggregates error-report volume for the analytics summary.
type ErrorSummaryStats struct {
	Total       int64            `json:"total"`
	PeriodTotal int64            `json:"period_total"`
	BySeverity  map[string]int64 `json:"by_severity"`
	ByType      map[string]int64 `json:"by_type"`
	DailyTrend  []TrendPoint     `json:"daily_trend"`
}

// LeadSeriesPoint is one interval of the lead time series.
type LeadSeriesPoint struct {
	Interval     string               `json:"interval" bson:"_id"`
	Count        int64                `json:"count" bson:"count"`
	AvgScore     float64              `json:"avg_score" bson:"avg_score"`
	HotLeads     int64                `json:"hot_leads" bson:"hot_leads"`
	BySubmission []domain.FacetBucket `json:"by_submission" bson:"by_submission"`
}

// ErrorSeriesPoint is one interval of the error time series.
type ErrorSeriesPoint struct {
	Interval   string               `json:"interval" bson:"_id"`
	Count      int64                `json:"count" bson:"count"`
	BySeverity []domain.FacetBucket `json:"by_severity" bson:"by_severity"`
}

// CollectionHealth is one collection's slice of the data health report.
type CollectionHealth struct {
	Name        string   `json:"name"`
	Documents   int64    `json:"documents"`
	Recent24h   int64    `json:"recent_24h"`
	Indexes     []string `json:"indexes"`
	SampleFound bool     `json:"sample_found"`
}

// LeadAnalyticsRepository exposes the aggregation queries behind the
// analytics endpoints.
type LeadAnalyticsRepository interface {
	LeadSummary(ctx context.Context, since time.Time) (*LeadSummaryStats, error)
	LeadTimeSeries(ctx context.Context, since time.Time, intervalFormat string) ([]LeadSeriesPoint, error)
	LeadCollectionHealth(ctx context.Context) (*CollectionHealth, error)
}

// ErrorAnalyticsRepository exposes the error-log aggregation queries.
type ErrorAnalyticsRepository interface {
	ErrorSummary(ctx context.Context, since time.Time) (*ErrorSummaryStats, error)
	ErrorTimeSeries(ctx context.Context, since time.Time, intervalFormat string) ([]ErrorSeriesPoint, error)
	ErrorCollectionHealth(ctx context.Context) (*CollectionHealth, error)
}
