package search

import (
	"strconv"
	"strings"
	"time"

	"lead_server/core/domain"
)

// ParamBag is the raw string query parameters from the request layer.
type ParamBag interface {
	Get(key string) string
}

// MapParams adapts a plain map to ParamBag, mainly for tests.
type MapParams map[string]string

func (m MapParams) Get(key string) string { return m[key] }

// ParseCriteria builds search criteria from raw query parameters. Numeric
// parsing is defensive: unparseable values are treated as absent, never an
// error.
func ParseCriteria(params ParamBag) *domain.LeadSearchCriteria {
	criteria := &domain.LeadSearchCriteria{
		Query:          strings.TrimSpace(params.Get("q")),
		BusinessType:   domain.BusinessType(params.Get("business_type")),
		SubmissionType: domain.SubmissionType(params.Get("submission_type")),
		Priority:       domain.LeadPriority(params.Get("priority")),
		State:          strings.TrimSpace(params.Get("state")),
		City:           strings.TrimSpace(params.Get("city")),
		Limit:          parseInt(params.Get("limit"), DefaultLimit),
		Offset:         parseInt(params.Get("offset"), 0),
	}

	if v, err := strconv.Atoi(params.Get("score_min")); err == nil {
		criteria.ScoreMin = &v
	}

	criteria.Created = domain.DateRange{
		From: parseTime(params.Get("date_from")),
		To:   parseTime(params.Get("date_to")),
	}

	if radius, err := strconv.ParseFloat(params.Get("radius_miles"), 64); err == nil && radius > 0 {
		criteria.RadiusMiles = radius
	}

	// Explicit center coordinates win over a city/state lookup downstream.
	lng, lngErr := strconv.ParseFloat(params.Get("lng"), 64)
	lat, latErr := strconv.ParseFloat(params.Get("lat"), 64)
	if lngErr == nil && latErr == nil {
		criteria.Center = &[2]float64{lng, lat}
	}

	return criteria
}

// ParseErrorCriteria builds error-report search criteria from raw params.
func ParseErrorCriteria(params ParamBag) *domain.ErrorSearchCriteria {
	return &domain.ErrorSearchCriteria{
		Query:     strings.TrimSpace(params.Get("q")),
		ErrorType: strings.TrimSpace(params.Get("error_type")),
		Severity:  domain.ErrorSeverity(params.Get("severity")),
		Occurred: domain.DateRange{
			From: parseTime(params.Get("date_from")),
			To:   parseTime(params.Get("date_to")),
		},
		Limit:  parseInt(params.Get("limit"), DefaultLimit),
		Offset: parseInt(params.Get("offset"), 0),
	}
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	return fallback
}

func parseTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
