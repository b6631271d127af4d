// Package mongodb implements MongoDB adapters for the application.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"lead_server/core/domain"
	"lead_server/core/port/out"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// =============================================================================
// Lead Analytics
// =============================================================================

// LeadSummary aggregates totals, breakdowns, and a daily trend for leads
// created since the given time.
func (a *LeadAdapter) LeadSummary(ctx context.Context, since time.Time) (*out.LeadSummaryStats, error) {
	stats := &out.LeadSummaryStats{
		ByType:         make(map[string]int64),
		ByBusinessType: make(map[string]int64),
	}

	total, err := a.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	stats.Total = total

	periodFilter := bson.M{"created_at": bson.M{"$gte": since}}
	periodTotal, err := a.collection.CountDocuments(ctx, periodFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to count period leads: %w", err)
	}
	stats.PeriodTotal = periodTotal

	byType, err := groupCounts(ctx, a.collection, periodFilter, "$submission_type")
	if err != nil {
		return nil, fmt.Errorf("failed to group leads by type: %w", err)
	}
	stats.ByType = byType

	byBusiness, err := groupCounts(ctx, a.collection, periodFilter, "$business_type")
	if err != nil {
		return nil, fmt.Errorf("failed to group leads by business type: %w", err)
	}
	stats.ByBusinessType = byBusiness

	trend, err := dailyTrend(ctx, a.collection, periodFilter, "created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to build lead trend: %w", err)
	}
	stats.DailyTrend = trend

	return stats, nil
}

// LeadTimeSeries buckets leads by the given $dateToString format, with
// average score, hot-lead count, and a submission-type split per bucket.
func (a *LeadAdapter) LeadTimeSeries(ctx context.Context, since time.Time, intervalFormat string) ([]out.LeadSeriesPoint, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"created_at": bson.M{"$gte": since}}},
		{"$group": bson.M{
			"_id": bson.M{
				"interval": bson.M{"$dateToString": bson.M{
					"format": intervalFormat,
					"date":   "$created_at",
				}},
				"submission_type": "$submission_type",
			},
			"count":     bson.M{"$sum": 1},
			"avg_score": bson.M{"$avg": "$score"},
			"hot_leads": bson.M{"$sum": bson.M{
				"$cond": bson.A{
					bson.M{"$eq": bson.A{"$priority", string(domain.PriorityHot)}},
					1, 0,
				},
			}},
		}},
		{"$group": bson.M{
			"_id":       "$_id.interval",
			"count":     bson.M{"$sum": "$count"},
			"avg_score": bson.M{"$avg": "$avg_score"},
			"hot_leads": bson.M{"$sum": "$hot_leads"},
			"by_submission": bson.M{"$push": bson.M{
				"value": "$_id.submission_type",
				"count": "$count",
			}},
		}},
		{"$sort": bson.D{{Key: "_id", Value: 1}}},
	}

	cursor, err := a.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to build lead time series: %w", err)
	}
	defer cursor.Close(ctx)

	points := []out.LeadSeriesPoint{}
	for cursor.Next(ctx) {
		var point out.LeadSeriesPoint
		if err := cursor.Decode(&point); err != nil {
			return nil, fmt.Errorf("failed to decode lead series point: %w", err)
		}
		points = append(points, point)
	}
	return points, cursor.Err()
}

// LeadCollectionHealth reports document counts, recent activity, and index
// names for the lead collection.
func (a *LeadAdapter) LeadCollectionHealth(ctx context.Context) (*out.CollectionHealth, error) {
	return collectionHealth(ctx, a.collection, "created_at")
}

var _ out.LeadAnalyticsRepository = (*LeadAdapter)(nil)

// =============================================================================
// Shared Aggregation Helpers
// =============================================================================

// groupCounts runs a single-field $group over the filtered set and returns
// value -> count, dropping null and empty keys.
func groupCounts(ctx context.Context, coll *mongo.Collection, filter bson.M, field string) (map[string]int64, error) {
	pipeline := []bson.M{
		{"$match": filter},
		{"$group": bson.M{"_id": field, "count": bson.M{"$sum": 1}}},
		{"$match": bson.M{"_id": bson.M{"$nin": bson.A{nil, ""}}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			Value string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Value] = row.Count
	}
	return counts, cursor.Err()
}

// dailyTrend buckets the filtered set into per-day counts on timeField.
func dailyTrend(ctx context.Context, coll *mongo.Collection, filter bson.M, timeField string) ([]out.TrendPoint, error) {
	pipeline := []bson.M{
		{"$match": filter},
		{"$group": bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$" + timeField,
			}},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.D{{Key: "_id", Value: 1}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	trend := []out.TrendPoint{}
	for cursor.Next(ctx) {
		var point out.TrendPoint
		if err := cursor.Decode(&point); err != nil {
			return nil, err
		}
		trend = append(trend, point)
	}
	return trend, cursor.Err()
}

// collectionHealth inspects one collection: total documents, writes in the
// last 24h on timeField, index names, and whether a sample document decodes.
func collectionHealth(ctx context.Context, coll *mongo.Collection, timeField string) (*out.CollectionHealth, error) {
	health := &out.CollectionHealth{Name: coll.Name()}

	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", coll.Name(), err)
	}
	health.Documents = total

	recent, err := coll.CountDocuments(ctx, bson.M{
		timeField: bson.M{"$gte": time.Now().UTC().Add(-24 * time.Hour)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count recent %s: %w", coll.Name(), err)
	}
	health.Recent24h = recent

	idxCursor, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s indexes: %w", coll.Name(), err)
	}
	defer idxCursor.Close(ctx)
	for idxCursor.Next(ctx) {
		var idx struct {
			Name string `bson:"name"`
		}
		if err := idxCursor.Decode(&idx); err != nil {
			return nil, fmt.Errorf("failed to decode index: %w", err)
		}
		health.Indexes = append(health.Indexes, idx.Name)
	}

	var sample bson.M
	err = coll.FindOne(ctx, bson.M{}).Decode(&sample)
	switch err {
	case nil:
		health.SampleFound = true
	case mongo.ErrNoDocuments:
		health.SampleFound = false
	default:
		return nil, fmt.Errorf("failed to sample %s: %w", coll.Name(), err)
	}

	return health, nil
}
