// Package mongodb implements MongoDB adapters for the application.
package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"lead_server/core/domain"
	"lead_server/core/port/out"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// =============================================================================
// MongoDB Lead Adapter
// =============================================================================

const (
	collectionLeads = "leads"

	// Mean Earth radius in miles, for $centerSphere radian conversion.
	earthRadiusMiles = 3963.2
)

// LeadAdapter implements out.LeadRepository using MongoDB.
type LeadAdapter struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewLeadAdapter creates a new MongoDB lead adapter.
func NewLeadAdapter(db *mongo.Database) *LeadAdapter {
	return &LeadAdapter{
		db:         db,
		collection: db.Collection(collectionLeads),
	}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *LeadAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{
				{Key: "priority", Value: 1},
				{Key: "score", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "location.coordinates", Value: "2dsphere"}},
		},
		{
			Keys: bson.D{
				{Key: "name", Value: "text"},
				{Key: "company", Value: "text"},
				{Key: "email", Value: "text"},
				{Key: "message", Value: "text"},
			},
			Options: options.Index().SetName("lead_text_search"),
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// =============================================================================
// Single Operations
// =============================================================================

// Insert stores a new lead record.
func (a *LeadAdapter) Insert(ctx context.Context, lead *domain.LeadRecord) error {
	if _, err := a.collection.InsertOne(ctx, lead); err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	return nil
}

// GetByID retrieves a lead by ID. Returns nil when not found.
func (a *LeadAdapter) GetByID(ctx context.Context, id string) (*domain.LeadRecord, error) {
	var lead domain.LeadRecord
	err := a.collection.FindOne(ctx, bson.M{"id": id}).Decode(&lead)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

// ListForRescore returns leads eligible for the maintenance re-score pass.
// Without force, only records missing a score or a priority are selected.
func (a *LeadAdapter) ListForRescore(ctx context.Context, ids []string, force bool, limit int) ([]*domain.LeadRecord, error) {
	filter := bson.M{}
	if len(ids) > 0 {
		filter["id"] = bson.M{"$in": ids}
	}
	if !force {
		filter["$or"] = []bson.M{
			{"score": bson.M{"$exists": false}},
			{"score": 0},
			{"priority": bson.M{"$in": []any{nil, ""}}},
		}
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := a.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads for rescore: %w", err)
	}
	defer cursor.Close(ctx)

	var leads []*domain.LeadRecord
	for cursor.Next(ctx) {
		var lead domain.LeadRecord
		if err := cursor.Decode(&lead); err != nil {
			return nil, fmt.Errorf("failed to decode lead: %w", err)
		}
		leads = append(leads, &lead)
	}

	return leads, cursor.Err()
}

// SaveScoring applies a recomputed scoring field set.
func (a *LeadAdapter) SaveScoring(ctx context.Context, id string, upd *out.ScoringUpdate) error {
	update := bson.M{
		"$set": bson.M{
			"score":      upd.Score,
			"priority":   upd.Priority,
			"insights":   upd.Insights,
			"tags":       upd.Tags,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := a.collection.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to save scoring: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("lead %s not found", id)
	}
	return nil
}

// SaveEnrichment applies derived firmographic fields. Submission fields other
// than headcount and marketing attribution are never touched.
func (a *LeadAdapter) SaveEnrichment(ctx context.Context, id string, upd *domain.EnrichmentUpdate) error {
	set := bson.M{
		"headcount":         upd.Headcount,
		"enrichment_status": upd.Status,
		"enrichment_notes":  upd.Notes,
		"insights":          upd.Insights,
		"marketing":         upd.Marketing,
		"updated_at":        time.Now().UTC(),
	}

	update := bson.M{
		"$set":      set,
		"$addToSet": bson.M{"tags": bson.M{"$each": upd.Tags}},
	}

	result, err := a.collection.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to save enrichment: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("lead %s not found", id)
	}
	return nil
}

// =============================================================================
// Search
// =============================================================================

// Search compiles the criteria into a single aggregation: optional text
// stage, structured match, then a $facet splitting the filtered set into
// the page window, the total count, and the facet breakdowns.
func (a *LeadAdapter) Search(ctx context.Context, criteria *domain.LeadSearchCriteria) (*domain.LeadSearchResult, error) {
	pipeline := buildLeadSearchPipeline(criteria)

	cursor, err := a.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to search leads: %w", err)
	}
	defer cursor.Close(ctx)

	var raw struct {
		Results         []*domain.LeadRecord `bson:"results"`
		Total           []struct {
			Count int64 `bson:"count"`
		} `bson:"total"`
		BusinessTypes   []domain.FacetBucket `bson:"business_types"`
		SubmissionTypes []domain.FacetBucket `bson:"submission_types"`
		Priorities      []domain.FacetBucket `bson:"priorities"`
		States          []domain.FacetBucket `bson:"states"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode search result: %w", err)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search result: %w", err)
	}

	result := &domain.LeadSearchResult{
		Results: raw.Results,
		Limit:   criteria.Limit,
		Offset:  criteria.Offset,
		Facets: domain.LeadSearchFacets{
			BusinessTypes:   raw.BusinessTypes,
			SubmissionTypes: raw.SubmissionTypes,
			Priorities:      raw.Priorities,
			States:          raw.States,
		},
	}
	if result.Results == nil {
		result.Results = []*domain.LeadRecord{}
	}
	if len(raw.Total) > 0 {
		result.Total = raw.Total[0].Count
	}

	return result, nil
}

func buildLeadSearchPipeline(criteria *domain.LeadSearchCriteria) []bson.M {
	var pipeline []bson.M

	// $text must be the first stage of the pipeline.
	if criteria.Query != "" {
		pipeline = append(pipeline, bson.M{
			"$match": bson.M{"$text": bson.M{"$search": criteria.Query}},
		})
	}

	if match := buildLeadMatch(criteria); len(match) > 0 {
		pipeline = append(pipeline, bson.M{"$match": match})
	}

	sort := bson.D{{Key: "score", Value: -1}, {Key: "created_at", Value: -1}}

	pipeline = append(pipeline, bson.M{"$facet": bson.M{
		"results": []bson.M{
			{"$sort": sort},
			{"$skip": criteria.Offset},
			{"$limit": criteria.Limit},
		},
		"total": []bson.M{
			{"$count": "count"},
		},
		"business_types":   facetPipeline("$business_type"),
		"submission_types": facetPipeline("$submission_type"),
		"priorities":       facetPipeline("$priority"),
		"states":           facetPipeline("$location.state"),
	}})

	return pipeline
}

func buildLeadMatch(criteria *domain.LeadSearchCriteria) bson.M {
	match := bson.M{}

	if criteria.BusinessType != "" {
		match["business_type"] = criteria.BusinessType
	}
	if criteria.SubmissionType != "" {
		match["submission_type"] = criteria.SubmissionType
	}
	if criteria.Priority != "" {
		match["priority"] = criteria.Priority
	}
	if criteria.State != "" {
		match["location.state"] = caseInsensitiveExact(criteria.State)
	}
	if criteria.City != "" {
		match["location.city"] = caseInsensitiveExact(criteria.City)
	}
	if criteria.ScoreMin != nil {
		match["score"] = bson.M{"$gte": *criteria.ScoreMin}
	}

	if !criteria.Created.IsZero() {
		created := bson.M{}
		if criteria.Created.From != nil {
			created["$gte"] = *criteria.Created.From
		}
		if criteria.Created.To != nil {
			created["$lte"] = *criteria.Created.To
		}
		match["created_at"] = created
	}

	// $geoWithin works inside $match without a geoNear stage, so text
	// relevance and radius filtering compose in one pipeline.
	if criteria.HasGeoFilter() {
		match["location.coordinates"] = bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{
					bson.A{criteria.Center[0], criteria.Center[1]},
					criteria.RadiusMiles / earthRadiusMiles,
				},
			},
		}
	}

	return match
}

// facetPipeline groups the filtered set by one field, drops records where
// the field is absent, and orders buckets by descending count.
func facetPipeline(field string) []bson.M {
	return []bson.M{
		{"$group": bson.M{"_id": field, "count": bson.M{"$sum": 1}}},
		{"$match": bson.M{"_id": bson.M{"$nin": bson.A{nil, ""}}}},
		{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
		{"$project": bson.M{"_id": 0, "value": "$_id", "count": 1}},
	}
}

func caseInsensitiveExact(value string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(value) + "$", Options: "i"}
}

// =============================================================================
// Interface Compliance
// =============================================================================

var _ out.LeadRepository = (*LeadAdapter)(nil)
