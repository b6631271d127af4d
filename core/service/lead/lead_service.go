// Package lead orchestrates the lead lifecycle: submission, re-scoring,
// and enrichment.
package lead

import (
	"context"
	"regexp"
	"strings"
	"time"

	"lead_server/core/domain"
	"lead_server/core/port/out"
	"lead_server/core/service/enrichment"
	"lead_server/core/service/scoring"
	"lead_server/pkg/apperr"
	"lead_server/pkg/logger"

	"github.com/google/uuid"
)

// Re-score batch clamps.
const (
	defaultRescoreLimit = 50
	maxRescoreLimit     = 500
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validSubmissionTypes = map[domain.SubmissionType]bool{
	domain.SubmissionStrategy: true,
	domain.SubmissionPilot:    true,
}

var validBusinessTypes = map[domain.BusinessType]bool{
	domain.BusinessRestaurant: true,
	domain.BusinessFleet:      true,
	domain.BusinessOther:      true,
}

// CoordinateResolver resolves a (city, state) pair to a [lng, lat] point.
type CoordinateResolver interface {
	Resolve(city, state string) ([2]float64, bool)
}

// Service implements the lead lifecycle operations.
type Service struct {
	repo     out.LeadRepository
	geo      CoordinateResolver
	producer out.JobProducer
}

// NewService creates a lead service. producer may be nil; enrichment jobs
// are then skipped and enrichment runs on demand only.
func NewService(repo out.LeadRepository, geo CoordinateResolver, producer out.JobProducer) *Service {
	return &Service{repo: repo, geo: geo, producer: producer}
}

// =============================================================================
// Submission
// =============================================================================

// Submit validates the inbound payload, computes the derived fields, and
// persists the record. An unresolvable location is normal: the record is
// stored without coordinates.
func (s *Service) Submit(ctx context.Context, sub *domain.LeadSubmission) (*domain.LeadRecord, error) {
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}
	normalizeSubmission(sub)

	if lngLat, ok := s.geo.Resolve(sub.Location.City, sub.Location.State); ok {
		sub.Location.Coordinates = domain.NewGeoPoint(lngLat)
	}

	score := scoring.ScoreLead(sub)
	priority := scoring.DeterminePriority(score)

	now := time.Now().UTC()
	record := &domain.LeadRecord{
		ID:               uuid.New().String(),
		LeadSubmission:   *sub,
		CreatedAt:        now,
		UpdatedAt:        now,
		Score:            score,
		Priority:         priority,
		Insights:         scoring.BuildLeadInsights(sub, score),
		Tags:             scoring.DeriveTags(sub, priority),
		EnrichmentStatus: domain.EnrichmentPending,
	}

	if err := s.repo.Insert(ctx, record); err != nil {
		return nil, apperr.DatabaseError("insert lead", err)
	}

	// Enrichment runs out of band; a queue failure must not lose the lead.
	if s.producer != nil {
		if _, err := s.producer.EnqueueLeadEnrich(ctx, record.ID); err != nil {
			logger.WithError(err).Warn("Failed to enqueue enrichment for lead %s", record.ID)
		}
	}

	return record, nil
}

func validateSubmission(sub *domain.LeadSubmission) error {
	if sub == nil {
		return apperr.BadRequest("empty submission")
	}

	required := []struct {
		field string
		value string
	}{
		{"name", sub.Name},
		{"email", sub.Email},
		{"company", sub.Company},
		{"business_type", string(sub.BusinessType)},
		{"phone", sub.Phone},
		{"submission_type", string(sub.SubmissionType)},
		{"location.city", sub.Location.City},
		{"location.state", sub.Location.State},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperr.MissingField(r.field)
		}
	}

	if !emailPattern.MatchString(strings.TrimSpace(sub.Email)) {
		return apperr.InvalidInput("email", "invalid email format")
	}
	if !validSubmissionTypes[sub.SubmissionType] {
		return apperr.InvalidInput("submission_type", "must be strategy or pilot")
	}
	if !validBusinessTypes[sub.BusinessType] {
		return apperr.InvalidInput("business_type", "must be restaurant, fleet, or other")
	}
	if sub.EstimatedLocations < 0 {
		return apperr.InvalidInput("estimated_locations", "must not be negative")
	}
	if sub.Headcount < 0 {
		return apperr.InvalidInput("headcount", "must not be negative")
	}
	return nil
}

func normalizeSubmission(sub *domain.LeadSubmission) {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.ToLower(strings.TrimSpace(sub.Email))
	sub.Company = strings.TrimSpace(sub.Company)
	sub.Phone = strings.TrimSpace(sub.Phone)
	sub.Message = strings.TrimSpace(sub.Message)
	sub.Location.City = strings.TrimSpace(sub.Location.City)
	sub.Location.State = strings.TrimSpace(sub.Location.State)
	sub.Location.PostalCode = strings.TrimSpace(sub.Location.PostalCode)
}

// =============================================================================
// Re-scoring
// =============================================================================

// RescoreRequest selects leads for the maintenance re-score pass.
type RescoreRequest struct {
	Limit   int      `json:"limit"`
	Force   bool     `json:"force"`
	LeadIDs []string `json:"lead_ids"`
}

// RescoreEntry is one re-scored lead in the batch response.
type RescoreEntry struct {
	ID       string              `json:"id"`
	Score    int                 `json:"score"`
	Priority domain.LeadPriority `json:"priority"`
}

// Rescore recomputes score, priority, insights, and tags for the selected
// leads. Invalid ids in the request are skipped, not rejected.
func (s *Service) Rescore(ctx context.Context, req *RescoreRequest) ([]RescoreEntry, error) {
	if req == nil {
		req = &RescoreRequest{}
	}

	limit := req.Limit
	if limit < 1 {
		limit = defaultRescoreLimit
	}
	if limit > maxRescoreLimit {
		limit = maxRescoreLimit
	}

	ids := make([]string, 0, len(req.LeadIDs))
	for _, id := range req.LeadIDs {
		if _, err := uuid.Parse(id); err == nil {
			ids = append(ids, id)
		}
	}

	leads, err := s.repo.ListForRescore(ctx, ids, req.Force, limit)
	if err != nil {
		return nil, apperr.DatabaseError("list leads for rescore", err)
	}

	entries := make([]RescoreEntry, 0, len(leads))
	for _, record := range leads {
		sub := record.LeadSubmission
		score := scoring.ScoreLead(&sub)
		priority := scoring.DeterminePriority(score)

		upd := &out.ScoringUpdate{
			Score:    score,
			Priority: priority,
			Insights: scoring.BuildLeadInsights(&sub, score),
			Tags:     scoring.DeriveTags(&sub, priority),
		}
		if err := s.repo.SaveScoring(ctx, record.ID, upd); err != nil {
			return nil, apperr.DatabaseError("save rescored lead", err)
		}

		entries = append(entries, RescoreEntry{ID: record.ID, Score: score, Priority: priority})
	}

	return entries, nil
}

// =============================================================================
// Enrichment
// =============================================================================

// EnrichResult pairs a lead id with the applied enrichment fields.
type EnrichResult struct {
	LeadID     string                   `json:"lead_id"`
	Enrichment *domain.EnrichmentUpdate `json:"enrichment"`
}

// Enrich derives firmographic fields from the lead's email domain and
// applies them. Idempotent: repeating the call rewrites the same fields.
func (s *Service) Enrich(ctx context.Context, leadID string) (*EnrichResult, error) {
	record, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return nil, apperr.DatabaseError("get lead", err)
	}
	if record == nil {
		return nil, apperr.NotFound("lead")
	}

	upd := enrichment.DeriveEnrichment(record.EmailDomain(), record.BusinessType)
	if err := s.repo.SaveEnrichment(ctx, record.ID, upd); err != nil {
		return nil, apperr.DatabaseError("save enrichment", err)
	}

	return &EnrichResult{LeadID: record.ID, Enrichment: upd}, nil
}

// Get fetches a single lead record.
func (s *Service) Get(ctx context.Context, leadID string) (*domain.LeadRecord, error) {
	record, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return nil, apperr.DatabaseError("get lead", err)
	}
	if record == nil {
		return nil, apperr.NotFound("lead")
	}
	return record, nil
}
