// Package errorlog captures and searches client error reports.
package errorlog

import (
	"context"
	"strings"
	"time"

	"lead_server/core/domain"
	"lead_server/core/port/out"
	"lead_server/core/service/search"
	"lead_server/pkg/apperr"

	"github.com/google/uuid"
)

// validSeverities guards the enum; anything else is stored as medium.
var validSeverities = map[domain.ErrorSeverity]bool{
	domain.SeverityLow:      true,
	domain.SeverityMedium:   true,
	domain.SeverityHigh:     true,
	domain.SeverityCritical: true,
}

// Service ingests and searches error reports.
type Service struct {
	repo out.ErrorLogRepository
}

// NewService creates an error-log service.
func NewService(repo out.ErrorLogRepository) *Service {
	return &Service{repo: repo}
}

// Capture validates and persists a client error report.
func (s *Service) Capture(ctx context.Context, report *domain.ErrorReport) (*domain.ErrorReport, error) {
	if report == nil {
		return nil, apperr.BadRequest("empty report")
	}
	if strings.TrimSpace(report.Message) == "" {
		return nil, apperr.MissingField("message")
	}

	report.ID = uuid.New().String()
	report.Message = strings.TrimSpace(report.Message)
	if report.ErrorType == "" {
		report.ErrorType = "unknown"
	}
	if !validSeverities[report.Severity] {
		report.Severity = domain.SeverityMedium
	}
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now().UTC()
	}

	if err := s.repo.Insert(ctx, report); err != nil {
		return nil, apperr.DatabaseError("insert error report", err)
	}
	return report, nil
}

// Search runs a filtered error-report query with the same pagination clamps
// as lead search.
func (s *Service) Search(ctx context.Context, criteria *domain.ErrorSearchCriteria) (*domain.ErrorSearchResult, error) {
	if criteria == nil {
		criteria = &domain.ErrorSearchCriteria{}
	}
	if criteria.Limit < 1 {
		criteria.Limit = search.DefaultLimit
	}
	if criteria.Limit > search.MaxLimit {
		criteria.Limit = search.MaxLimit
	}
	if criteria.Offset < 0 {
		criteria.Offset = 0
	}

	result, err := s.repo.Search(ctx, criteria)
	if err != nil {
		return nil, apperr.DatabaseError("search error reports", err)
	}
	if result.Results == nil {
		result.Results = []*domain.ErrorReport{}
	}
	result.Limit = criteria.Limit
	result.Offset = criteria.Offset
	return result, nil
}
