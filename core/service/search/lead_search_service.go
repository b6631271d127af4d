// Package search composes lead search criteria and runs the
// filter -> paginate -> facet pipeline through the repository port.
package search

import (
	"context"

	"lead_server/core/domain"
	"lead_server/core/port/out"
)

// Pagination clamps.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// CoordinateResolver resolves a (city, state) pair to a [lng, lat] center.
type CoordinateResolver interface {
	Resolve(city, state string) ([2]float64, bool)
}

// Service runs lead searches.
type Service struct {
	repo out.LeadRepository
	geo  CoordinateResolver
}

// NewService creates a search service.
func NewService(repo out.LeadRepository, geo CoordinateResolver) *Service {
	return &Service{repo: repo, geo: geo}
}

// Search normalizes the criteria and executes the query. Totals and facets
// cover the full filtered set; the pagination window only bounds Results.
func (s *Service) Search(ctx context.Context, criteria *domain.LeadSearchCriteria) (*domain.LeadSearchResult, error) {
	if criteria == nil {
		criteria = &domain.LeadSearchCriteria{}
	}
	s.normalize(criteria)

	result, err := s.repo.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}

	if result.Results == nil {
		result.Results = []*domain.LeadRecord{}
	}
	result.Limit = criteria.Limit
	result.Offset = criteria.Offset
	return result, nil
}

// normalize clamps pagination and resolves the geo center. A radius without
// a resolvable center deactivates the geo filter instead of failing.
func (s *Service) normalize(criteria *domain.LeadSearchCriteria) {
	if criteria.Limit < 1 {
		criteria.Limit = DefaultLimit
	}
	if criteria.Limit > MaxLimit {
		criteria.Limit = MaxLimit
	}
	if criteria.Offset < 0 {
		criteria.Offset = 0
	}
	if criteria.RadiusMiles < 0 {
		criteria.RadiusMiles = 0
	}

	// Explicit coordinates take precedence over a city/state lookup.
	if criteria.RadiusMiles > 0 && criteria.Center == nil && s.geo != nil {
		if lngLat, ok := s.geo.Resolve(criteria.City, criteria.State); ok {
			center := lngLat
			criteria.Center = &center
		}
	}
}
