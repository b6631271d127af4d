package search

import (
	"context"
	"testing"

	"lead_server/core/domain"
	"lead_server/core/port/out"
)

// stubRepo captures the criteria the service hands to the store.
type stubRepo struct {
	got    *domain.LeadSearchCriteria
	result *domain.LeadSearchResult
}

func (r *stubRepo) EnsureIndexes(ctx context.Context) error { return nil }
func (r *stubRepo) Insert(ctx context.Context, lead *domain.LeadRecord) error {
	return nil
}
func (r *stubRepo) GetByID(ctx context.Context, id string) (*domain.LeadRecord, error) {
	return nil, nil
}
func (r *stubRepo) ListForRescore(ctx context.Context, ids []string, force bool, limit int) ([]*domain.LeadRecord, error) {
	return nil, nil
}
func (r *stubRepo) SaveScoring(ctx context.Context, id string, upd *out.ScoringUpdate) error {
	return nil
}
func (r *stubRepo) SaveEnrichment(ctx context.Context, id string, upd *domain.EnrichmentUpdate) error {
	return nil
}
func (r *stubRepo) Search(ctx context.Context, criteria *domain.LeadSearchCriteria) (*domain.LeadSearchResult, error) {
	r.got = criteria
	if r.result != nil {
		return r.result, nil
	}
	return &domain.LeadSearchResult{}, nil
}

// stubGeo resolves a single known pair.
type stubGeo struct{}

func (stubGeo) Resolve(city, state string) ([2]float64, bool) {
	if city == "toms river" && state == "nj" {
		return [2]float64{-74.1979, 39.9537}, true
	}
	return [2]float64{}, false
}

func TestSearchClampsPagination(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{name: "zero limit falls to default", limit: 0, offset: 0, wantLimit: DefaultLimit, wantOffset: 0},
		{name: "negative limit falls to default", limit: -5, offset: 0, wantLimit: DefaultLimit, wantOffset: 0},
		{name: "oversized limit clamps to max", limit: 5000, offset: 0, wantLimit: MaxLimit, wantOffset: 0},
		{name: "negative offset clamps to zero", limit: 10, offset: -3, wantLimit: 10, wantOffset: 0},
		{name: "valid values pass through", limit: 25, offset: 50, wantLimit: 25, wantOffset: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubRepo{}
			svc := NewService(repo, stubGeo{})

			result, err := svc.Search(context.Background(), &domain.LeadSearchCriteria{
				Limit:  tt.limit,
				Offset: tt.offset,
			})
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}

			if repo.got.Limit != tt.wantLimit || repo.got.Offset != tt.wantOffset {
				t.Errorf("criteria sent = (limit %d, offset %d), want (%d, %d)",
					repo.got.Limit, repo.got.Offset, tt.wantLimit, tt.wantOffset)
			}
			if result.Limit != tt.wantLimit || result.Offset != tt.wantOffset {
				t.Errorf("result echo = (limit %d, offset %d), want (%d, %d)",
					result.Limit, result.Offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestSearchResolvesGeoCenter(t *testing.T) {
	tests := []struct {
		name       string
		criteria   *domain.LeadSearchCriteria
		wantCenter *[2]float64
		wantGeo    bool
	}{
		{
			name: "radius with resolvable city activates geo filter",
			criteria: &domain.LeadSearchCriteria{
				City:        "toms river",
				State:       "nj",
				RadiusMiles: 25,
			},
			wantCenter: &[2]float64{-74.1979, 39.9537},
			wantGeo:    true,
		},
		{
			name: "radius with unresolvable city deactivates geo filter",
			criteria: &domain.LeadSearchCriteria{
				City:        "seattle",
				State:       "wa",
				RadiusMiles: 25,
			},
			wantGeo: false,
		},
		{
			name: "explicit center wins over lookup",
			criteria: &domain.LeadSearchCriteria{
				City:        "toms river",
				State:       "nj",
				RadiusMiles: 25,
				Center:      &[2]float64{-75.0, 40.0},
			},
			wantCenter: &[2]float64{-75.0, 40.0},
			wantGeo:    true,
		},
		{
			name: "no radius never resolves a center",
			criteria: &domain.LeadSearchCriteria{
				City:  "toms river",
				State: "nj",
			},
			wantGeo: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubRepo{}
			svc := NewService(repo, stubGeo{})

			if _, err := svc.Search(context.Background(), tt.criteria); err != nil {
				t.Fatalf("Search() error = %v", err)
			}

			if got := repo.got.HasGeoFilter(); got != tt.wantGeo {
				t.Fatalf("HasGeoFilter() = %v, want %v", got, tt.wantGeo)
			}
			if tt.wantCenter != nil && *repo.got.Center != *tt.wantCenter {
				t.Errorf("center = %v, want %v", *repo.got.Center, *tt.wantCenter)
			}
		})
	}
}

func TestSearchNilCriteria(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, stubGeo{})

	result, err := svc.Search(context.Background(), nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.Results == nil {
		t.Error("Results should be an empty slice, not nil")
	}
	if repo.got.Limit != DefaultLimit {
		t.Errorf("limit = %d, want default %d", repo.got.Limit, DefaultLimit)
	}
}

func TestParseCriteria(t *testing.T) {
	criteria := ParseCriteria(MapParams{
		"q":               "pizza",
		"business_type":   "restaurant",
		"submission_type": "strategy",
		"priority":        "hot",
		"state":           "NJ",
		"city":            "Toms River",
		"score_min":       "70",
		"limit":           "20",
		"offset":          "40",
		"radius_miles":    "25",
		"date_from":       "2026-01-01",
		"date_to":         "2026-06-30T23:59:59Z",
	})

	if criteria.Query != "pizza" {
		t.Errorf("query = %q", criteria.Query)
	}
	if criteria.BusinessType != domain.BusinessRestaurant {
		t.Errorf("business type = %s", criteria.BusinessType)
	}
	if criteria.Priority != domain.PriorityHot {
		t.Errorf("priority = %s", criteria.Priority)
	}
	if criteria.ScoreMin == nil || *criteria.ScoreMin != 70 {
		t.Errorf("score_min = %v", criteria.ScoreMin)
	}
	if criteria.Limit != 20 || criteria.Offset != 40 {
		t.Errorf("pagination = (%d, %d)", criteria.Limit, criteria.Offset)
	}
	if criteria.RadiusMiles != 25 {
		t.Errorf("radius = %v", criteria.RadiusMiles)
	}
	if criteria.Created.From == nil || criteria.Created.From.Format("2006-01-02") != "2026-01-01" {
		t.Errorf("date_from = %v", criteria.Created.From)
	}
	if criteria.Created.To == nil {
		t.Error("date_to not parsed")
	}
}

func TestParseCriteriaDefensiveParsing(t *testing.T) {
	criteria := ParseCriteria(MapParams{
		"score_min":    "abc",
		"limit":        "xyz",
		"radius_miles": "-10",
		"date_from":    "not-a-date",
		"lng":          "-74.1",
	})

	if criteria.ScoreMin != nil {
		t.Errorf("score_min should be absent, got %v", *criteria.ScoreMin)
	}
	if criteria.Limit != DefaultLimit {
		t.Errorf("limit = %d, want default", criteria.Limit)
	}
	if criteria.RadiusMiles != 0 {
		t.Errorf("negative radius should be dropped, got %v", criteria.RadiusMiles)
	}
	if criteria.Created.From != nil {
		t.Errorf("bad date should be absent, got %v", criteria.Created.From)
	}
	// lng without lat never sets a center
	if criteria.Center != nil {
		t.Errorf("half a coordinate pair should not set a center: %v", criteria.Center)
	}
}

func TestParseErrorCriteria(t *testing.T) {
	criteria := ParseErrorCriteria(MapParams{
		"q":          "timeout",
		"error_type": "api_error",
		"severity":   "high",
		"limit":      "10",
		"date_from":  "2026-03-01",
	})

	if criteria.Query != "timeout" || criteria.ErrorType != "api_error" {
		t.Errorf("parsed = %+v", criteria)
	}
	if criteria.Severity != domain.SeverityHigh {
		t.Errorf("severity = %s", criteria.Severity)
	}
	if criteria.Limit != 10 {
		t.Errorf("limit = %d", criteria.Limit)
	}
	if criteria.Occurred.From == nil {
		t.Error("date_from not parsed")
	}
}
