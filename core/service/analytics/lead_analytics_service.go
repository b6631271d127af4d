// Package analytics serves the reporting endpoints: summary stats, time
// series, and the data health check.
package analytics

import (
	"context"
	"fmt"
	"time"

	"lead_server/core/port/out"
	"lead_server/pkg/apperr"
	"lead_server/pkg/logger"
)

// Summary/time-series window clamps, in days.
const (
	defaultSummaryDays = 30
	defaultSeriesDays  = 30
	minSeriesDays      = 7
	maxSeriesDays      = 365
)

// Granularity selects the interval bucketing of a time series.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// Mongo $dateToString formats per granularity. Weekly uses the ISO week so
// year boundaries bucket correctly.
var intervalFormats = map[Granularity]string{
	GranularityDaily:   "%Y-%m-%d",
	GranularityWeekly:  "%G-W%V",
	GranularityMonthly: "%Y-%m",
}

// Summary is the combined analytics summary response.
type Summary struct {
	PeriodDays  int                    `json:"period_days"`
	GeneratedAt time.Time              `json:"generated_at"`
	Leads       *out.LeadSummaryStats  `json:"leads"`
	Errors      *out.ErrorSummaryStats `json:"errors"`
}

// TimeSeries is the combined time-series response.
type TimeSeries struct {
	PeriodDays  int                    `json:"period_days"`
	Granularity Granularity            `json:"granularity"`
	Leads       []out.LeadSeriesPoint  `json:"leads"`
	Errors      []out.ErrorSeriesPoint `json:"errors"`
}

// HealthReport is the verify-data response.
type HealthReport struct {
	CheckedAt   time.Time              `json:"checked_at"`
	Healthy     bool                   `json:"healthy"`
	Collections []out.CollectionHealth `json:"collections"`
}

// Aggregation results change slowly; a short cache keeps dashboard polling
// off the aggregation pipeline.
const cacheTTL = 60 * time.Second

// Service composes lead and error analytics queries.
type Service struct {
	leads  out.LeadAnalyticsRepository
	errors out.ErrorAnalyticsRepository
	cache  out.ResponseCache
}

func NewService(leads out.LeadAnalyticsRepository, errors out.ErrorAnalyticsRepository) *Service {
	return &Service{leads: leads, errors: errors}
}

// WithCache enables short-TTL response caching. cache may be nil.
func (s *Service) WithCache(cache out.ResponseCache) *Service {
	s.cache = cache
	return s
}

// Summary returns totals, breakdowns, and daily trends for the last
// periodDays days. Non-positive periodDays falls back to the default.
func (s *Service) Summary(ctx context.Context, periodDays int) (*Summary, error) {
	if periodDays < 1 {
		periodDays = defaultSummaryDays
	}

	cacheKey := fmt.Sprintf("analytics:summary:%d", periodDays)
	if cached := s.fromCache(ctx, cacheKey, &Summary{}); cached != nil {
		return cached.(*Summary), nil
	}

	since := time.Now().UTC().AddDate(0, 0, -periodDays)

	leadStats, err := s.leads.LeadSummary(ctx, since)
	if err != nil {
		return nil, apperr.DatabaseError("lead summary", err)
	}
	errorStats, err := s.errors.ErrorSummary(ctx, since)
	if err != nil {
		return nil, apperr.DatabaseError("error summary", err)
	}

	summary := &Summary{
		PeriodDays:  periodDays,
		GeneratedAt: time.Now().UTC(),
		Leads:       leadStats,
		Errors:      errorStats,
	}
	s.toCache(ctx, cacheKey, summary)
	return summary, nil
}

// TimeSeries returns bucketed lead and error series at the requested
// granularity. periodDays clamps to [7, 365].
func (s *Service) TimeSeries(ctx context.Context, periodDays int, granularity Granularity) (*TimeSeries, error) {
	if periodDays < 1 {
		periodDays = defaultSeriesDays
	}
	if periodDays < minSeriesDays {
		periodDays = minSeriesDays
	}
	if periodDays > maxSeriesDays {
		periodDays = maxSeriesDays
	}

	if granularity == "" {
		granularity = GranularityDaily
	}
	format, ok := intervalFormats[granularity]
	if !ok {
		return nil, apperr.InvalidInput("granularity", "must be daily, weekly, or monthly")
	}

	cacheKey := fmt.Sprintf("analytics:timeseries:%d:%s", periodDays, granularity)
	if cached := s.fromCache(ctx, cacheKey, &TimeSeries{}); cached != nil {
		return cached.(*TimeSeries), nil
	}

	since := time.Now().UTC().AddDate(0, 0, -periodDays)

	leadSeries, err := s.leads.LeadTimeSeries(ctx, since, format)
	if err != nil {
		return nil, apperr.DatabaseError("lead time series", err)
	}
	errorSeries, err := s.errors.ErrorTimeSeries(ctx, since, format)
	if err != nil {
		return nil, apperr.DatabaseError("error time series", err)
	}

	series := &TimeSeries{
		PeriodDays:  periodDays,
		Granularity: granularity,
		Leads:       leadSeries,
		Errors:      errorSeries,
	}
	s.toCache(ctx, cacheKey, series)
	return series, nil
}

// fromCache returns the populated dest on a hit, nil otherwise. Cache
// failures degrade to a live query.
func (s *Service) fromCache(ctx context.Context, key string, dest any) any {
	if s.cache == nil {
		return nil
	}
	hit, err := s.cache.GetJSON(ctx, key, dest)
	if err != nil {
		logger.WithError(err).Warn("Analytics cache read failed for %s", key)
		return nil
	}
	if !hit {
		return nil
	}
	return dest
}

func (s *Service) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, cacheTTL); err != nil {
		logger.WithError(err).Warn("Analytics cache write failed for %s", key)
	}
}

// VerifyData inspects both collections: counts, recent write activity,
// and index presence. Healthy means every collection holds documents and
// carries at least its id index.
func (s *Service) VerifyData(ctx context.Context) (*HealthReport, error) {
	leadHealth, err := s.leads.LeadCollectionHealth(ctx)
	if err != nil {
		return nil, apperr.DatabaseError("lead collection health", err)
	}
	errorHealth, err := s.errors.ErrorCollectionHealth(ctx)
	if err != nil {
		return nil, apperr.DatabaseError("error collection health", err)
	}

	collections := []out.CollectionHealth{*leadHealth, *errorHealth}
	healthy := true
	for _, c := range collections {
		if c.Documents == 0 || len(c.Indexes) == 0 {
			healthy = false
		}
	}

	return &HealthReport{
		CheckedAt:   time.Now().UTC(),
		Healthy:     healthy,
		Collections: collections,
	}, nil
}
