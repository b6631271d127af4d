package lead

import (
	"context"
	"strings"
	"testing"

	"lead_server/core/domain"
	"lead_server/core/port/out"
	"lead_server/pkg/apperr"

	"github.com/google/uuid"
)

// fakeRepo is an in-memory LeadRepository recording calls.
type fakeRepo struct {
	inserted []*domain.LeadRecord
	records  map[string]*domain.LeadRecord

	rescoreIDs   []string
	rescoreForce bool
	rescoreLimit int
	rescoreList  []*domain.LeadRecord

	scoring    map[string]*out.ScoringUpdate
	enrichment map[string]*domain.EnrichmentUpdate
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		records:    map[string]*domain.LeadRecord{},
		scoring:    map[string]*out.ScoringUpdate{},
		enrichment: map[string]*domain.EnrichmentUpdate{},
	}
}

func (r *fakeRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *fakeRepo) Insert(ctx context.Context, lead *domain.LeadRecord) error {
	r.inserted = append(r.inserted, lead)
	r.records[lead.ID] = lead
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*domain.LeadRecord, error) {
	return r.records[id], nil
}

func (r *fakeRepo) ListForRescore(ctx context.Context, ids []string, force bool, limit int) ([]*domain.LeadRecord, error) {
	r.rescoreIDs = ids
	r.rescoreForce = force
	r.rescoreLimit = limit
	return r.rescoreList, nil
}

func (r *fakeRepo) SaveScoring(ctx context.Context, id string, upd *out.ScoringUpdate) error {
	r.scoring[id] = upd
	return nil
}

func (r *fakeRepo) SaveEnrichment(ctx context.Context, id string, upd *domain.EnrichmentUpdate) error {
	r.enrichment[id] = upd
	return nil
}

func (r *fakeRepo) Search(ctx context.Context, criteria *domain.LeadSearchCriteria) (*domain.LeadSearchResult, error) {
	return &domain.LeadSearchResult{}, nil
}

type fakeProducer struct {
	enqueued []string
}

func (p *fakeProducer) EnqueueLeadEnrich(ctx context.Context, leadID string) (string, error) {
	p.enqueued = append(p.enqueued, leadID)
	return "job-1", nil
}

type fakeGeo struct{}

func (fakeGeo) Resolve(city, state string) ([2]float64, bool) {
	if strings.EqualFold(city, "toms river") && strings.EqualFold(state, "nj") {
		return [2]float64{-74.1979, 39.9537}, true
	}
	return [2]float64{}, false
}

func validSubmission() *domain.LeadSubmission {
	return &domain.LeadSubmission{
		Name:           "Pat Doe",
		Email:          "Pat@BigGroup.com",
		Company:        "Big Group",
		BusinessType:   domain.BusinessRestaurant,
		Phone:          "555-0100",
		SubmissionType: domain.SubmissionStrategy,
		Location: domain.LeadLocation{
			City:  "Toms River",
			State: "NJ",
		},
		EstimatedLocations: 12,
		Headcount:          250,
	}
}

func TestSubmitHappyPath(t *testing.T) {
	repo := newFakeRepo()
	producer := &fakeProducer{}
	svc := NewService(repo, fakeGeo{}, producer)

	record, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if _, err := uuid.Parse(record.ID); err != nil {
		t.Errorf("id %q is not a uuid", record.ID)
	}
	if record.Email != "pat@biggroup.com" {
		t.Errorf("email not normalized: %q", record.Email)
	}
	if record.Score < 1 || record.Score > 100 {
		t.Errorf("score %d out of range", record.Score)
	}
	// restaurant 35 + strategy 25 + 12 locations 20 + headcount 15 + NJ 10
	// + toms river 5 overflows the clamp.
	if record.Score != 100 {
		t.Errorf("score = %d, want 100", record.Score)
	}
	if record.Priority != domain.PriorityHot {
		t.Errorf("priority = %s, want hot", record.Priority)
	}
	if record.EnrichmentStatus != domain.EnrichmentPending {
		t.Errorf("enrichment status = %s", record.EnrichmentStatus)
	}
	if record.Location.Coordinates == nil {
		t.Fatal("known city should resolve coordinates")
	}
	if got := record.Location.Coordinates.Coordinates; got != [2]float64{-74.1979, 39.9537} {
		t.Errorf("coordinates = %v", got)
	}
	if record.CreatedAt.IsZero() || !record.CreatedAt.Equal(record.UpdatedAt) {
		t.Errorf("timestamps = (%v, %v)", record.CreatedAt, record.UpdatedAt)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("inserted %d records", len(repo.inserted))
	}
	if len(producer.enqueued) != 1 || producer.enqueued[0] != record.ID {
		t.Errorf("enqueued = %v", producer.enqueued)
	}
}

func TestSubmitWithoutProducer(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeGeo{}, nil)

	if _, err := svc.Submit(context.Background(), validSubmission()); err != nil {
		t.Fatalf("Submit() without producer error = %v", err)
	}
}

func TestSubmitUnknownCityStoresWithoutCoordinates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeGeo{}, nil)

	sub := validSubmission()
	sub.Location.City = "Boise"
	sub.Location.State = "ID"

	record, err := svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if record.Location.Coordinates != nil {
		t.Errorf("unknown city should not resolve: %v", record.Location.Coordinates)
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*domain.LeadSubmission)
		wantCode string
	}{
		{
			name:     "missing name",
			mutate:   func(s *domain.LeadSubmission) { s.Name = "  " },
			wantCode: apperr.CodeMissingField,
		},
		{
			name:     "missing email",
			mutate:   func(s *domain.LeadSubmission) { s.Email = "" },
			wantCode: apperr.CodeMissingField,
		},
		{
			name:     "missing city",
			mutate:   func(s *domain.LeadSubmission) { s.Location.City = "" },
			wantCode: apperr.CodeMissingField,
		},
		{
			name:     "malformed email",
			mutate:   func(s *domain.LeadSubmission) { s.Email = "not-an-email" },
			wantCode: apperr.CodeInvalidInput,
		},
		{
			name:     "email without tld",
			mutate:   func(s *domain.LeadSubmission) { s.Email = "pat@host" },
			wantCode: apperr.CodeInvalidInput,
		},
		{
			name:     "unknown submission type",
			mutate:   func(s *domain.LeadSubmission) { s.SubmissionType = "demo" },
			wantCode: apperr.CodeInvalidInput,
		},
		{
			name:     "unknown business type",
			mutate:   func(s *domain.LeadSubmission) { s.BusinessType = "retail" },
			wantCode: apperr.CodeInvalidInput,
		},
		{
			name:     "negative locations",
			mutate:   func(s *domain.LeadSubmission) { s.EstimatedLocations = -1 },
			wantCode: apperr.CodeInvalidInput,
		},
		{
			name:     "negative headcount",
			mutate:   func(s *domain.LeadSubmission) { s.Headcount = -5 },
			wantCode: apperr.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			svc := NewService(repo, fakeGeo{}, nil)

			sub := validSubmission()
			tt.mutate(sub)

			_, err := svc.Submit(context.Background(), sub)
			ae := apperr.AsAppError(err)
			if ae == nil {
				t.Fatalf("Submit() error = %v, want AppError", err)
			}
			if ae.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", ae.Code, tt.wantCode)
			}
			if len(repo.inserted) != 0 {
				t.Error("rejected submission must not be persisted")
			}
		})
	}
}

func TestSubmitNil(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeGeo{}, nil)
	_, err := svc.Submit(context.Background(), nil)
	if ae := apperr.AsAppError(err); ae == nil || ae.Code != apperr.CodeBadRequest {
		t.Fatalf("error = %v, want BAD_REQUEST", err)
	}
}

func TestRescoreClampsAndFilters(t *testing.T) {
	goodID := uuid.New().String()

	tests := []struct {
		name      string
		req       *RescoreRequest
		wantLimit int
		wantIDs   int
	}{
		{name: "nil request uses defaults", req: nil, wantLimit: 50},
		{name: "zero limit uses default", req: &RescoreRequest{Limit: 0}, wantLimit: 50},
		{name: "oversized limit clamps", req: &RescoreRequest{Limit: 9999}, wantLimit: 500},
		{
			name:      "invalid ids are skipped",
			req:       &RescoreRequest{Limit: 10, LeadIDs: []string{goodID, "nope", ""}},
			wantLimit: 10,
			wantIDs:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			svc := NewService(repo, fakeGeo{}, nil)

			if _, err := svc.Rescore(context.Background(), tt.req); err != nil {
				t.Fatalf("Rescore() error = %v", err)
			}
			if repo.rescoreLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", repo.rescoreLimit, tt.wantLimit)
			}
			if len(repo.rescoreIDs) != tt.wantIDs {
				t.Errorf("ids = %v, want %d entries", repo.rescoreIDs, tt.wantIDs)
			}
		})
	}
}

func TestRescoreWritesUpdatedScores(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeGeo{}, nil)

	stale := &domain.LeadRecord{
		ID:             uuid.New().String(),
		LeadSubmission: *validSubmission(),
	}
	repo.rescoreList = []*domain.LeadRecord{stale}

	entries, err := svc.Rescore(context.Background(), &RescoreRequest{Force: true})
	if err != nil {
		t.Fatalf("Rescore() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].ID != stale.ID || entries[0].Score != 100 || entries[0].Priority != domain.PriorityHot {
		t.Errorf("entry = %+v", entries[0])
	}

	upd, ok := repo.scoring[stale.ID]
	if !ok {
		t.Fatal("SaveScoring not called")
	}
	if upd.Score != 100 || upd.Priority != domain.PriorityHot {
		t.Errorf("saved update = %+v", upd)
	}
	if len(upd.Tags) == 0 || len(upd.Insights.FollowUpActions) == 0 {
		t.Errorf("derived fields missing: tags=%v insights=%+v", upd.Tags, upd.Insights)
	}
	if !repo.rescoreForce {
		t.Error("force flag not forwarded")
	}
}

func TestEnrich(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeGeo{}, nil)

	record, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	result, err := svc.Enrich(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if result.LeadID != record.ID {
		t.Errorf("lead id = %s", result.LeadID)
	}
	if result.Enrichment == nil || result.Enrichment.Status != domain.EnrichmentComplete {
		t.Errorf("enrichment = %+v", result.Enrichment)
	}
	if _, ok := repo.enrichment[record.ID]; !ok {
		t.Error("SaveEnrichment not called")
	}
}

func TestEnrichUnknownLead(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeGeo{}, nil)
	_, err := svc.Enrich(context.Background(), uuid.New().String())
	if ae := apperr.AsAppError(err); ae == nil || ae.Code != apperr.CodeNotFound {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
}

func TestGetUnknownLead(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeGeo{}, nil)
	_, err := svc.Get(context.Background(), "missing")
	if ae := apperr.AsAppError(err); ae == nil || ae.Code != apperr.CodeNotFound {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
}
