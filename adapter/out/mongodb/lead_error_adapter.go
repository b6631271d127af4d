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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// =============================================================================
// MongoDB Error Log Adapter
// =============================================================================

const collectionErrorLogs = "error_logs"

// ErrorLogAdapter implements out.ErrorLogRepository using MongoDB.
type ErrorLogAdapter struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewErrorLogAdapter creates a new MongoDB error log adapter.
func NewErrorLogAdapter(db *mongo.Database) *ErrorLogAdapter {
	return &ErrorLogAdapter{
		db:         db,
		collection: db.Collection(collectionErrorLogs),
	}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *ErrorLogAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
		},
		{
			Keys: bson.D{
				{Key: "severity", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "message", Value: "text"},
				{Key: "error_type", Value: "text"},
			},
			Options: options.Index().SetName("error_text_search"),
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert stores a captured error report.
func (a *ErrorLogAdapter) Insert(ctx context.Context, report *domain.ErrorReport) error {
	if _, err := a.collection.InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to insert error report: %w", err)
	}
	return nil
}

// Search filters error reports with pagination, newest first.
func (a *ErrorLogAdapter) Search(ctx context.Context, criteria *domain.ErrorSearchCriteria) (*domain.ErrorSearchResult, error) {
	filter := bson.M{}

	if criteria.Query != "" {
		filter["$text"] = bson.M{"$search": criteria.Query}
	}
	if criteria.ErrorType != "" {
		filter["error_type"] = criteria.ErrorType
	}
	if criteria.Severity != "" {
		filter["severity"] = criteria.Severity
	}
	if !criteria.Occurred.IsZero() {
		occurred := bson.M{}
		if criteria.Occurred.From != nil {
			occurred["$gte"] = *criteria.Occurred.From
		}
		if criteria.Occurred.To != nil {
			occurred["$lte"] = *criteria.Occurred.To
		}
		filter["timestamp"] = occurred
	}

	total, err := a.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count error reports: %w", err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64(criteria.Offset)).
		SetLimit(int64(criteria.Limit))

	cursor, err := a.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to search error reports: %w", err)
	}
	defer cursor.Close(ctx)

	results := []*domain.ErrorReport{}
	for cursor.Next(ctx) {
		var report domain.ErrorReport
		if err := cursor.Decode(&report); err != nil {
			return nil, fmt.Errorf("failed to decode error report: %w", err)
		}
		results = append(results, &report)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to read error reports: %w", err)
	}

	return &domain.ErrorSearchResult{
		Results: results,
		Total:   total,
		Limit:   criteria.Limit,
		Offset:  criteria.Offset,
	}, nil
}

// =============================================================================
// Analytics
// =============================================================================

// ErrorSummary aggregates totals, breakdowns, and a daily trend for reports
// captured since the given time.
func (a *ErrorLogAdapter) ErrorSummary(ctx context.Context, since time.Time) (*out.ErrorSummaryStats, error) {
	stats := &out.ErrorSummaryStats{
		BySeverity: make(map[string]int64),
		ByType:     make(map[string]int64),
	}

	total, err := a.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count error reports: %w", err)
	}
	stats.Total = total

	periodFilter := bson.M{"timestamp": bson.M{"$gte": since}}
	periodTotal, err := a.collection.CountDocuments(ctx, periodFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to count period error reports: %w", err)
	}
	stats.PeriodTotal = periodTotal

	bySeverity, err := groupCounts(ctx, a.collection, periodFilter, "$severity")
	if err != nil {
		return nil, fmt.Errorf("failed to group errors by severity: %w", err)
	}
	stats.BySeverity = bySeverity

	byType, err := groupCounts(ctx, a.collection, periodFilter, "$error_type")
	if err != nil {
		return nil, fmt.Errorf("failed to group errors by type: %w", err)
	}
	stats.ByType = byType

	trend, err := dailyTrend(ctx, a.collection, periodFilter, "timestamp")
	if err != nil {
		return nil, fmt.Errorf("failed to build error trend: %w", err)
	}
	stats.DailyTrend = trend

	return stats, nil
}

// ErrorTimeSeries buckets error reports by the given $dateToString format.
func (a *ErrorLogAdapter) ErrorTimeSeries(ctx context.Context, since time.Time, intervalFormat string) ([]out.ErrorSeriesPoint, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"timestamp": bson.M{"$gte": since}}},
		{"$group": bson.M{
			"_id": bson.M{
				"interval": bson.M{"$dateToString": bson.M{
					"format": intervalFormat,
					"date":   "$timestamp",
				}},
				"severity": "$severity",
			},
			"count": bson.M{"$sum": 1},
		}},
		{"$group": bson.M{
			"_id":   "$_id.interval",
			"count": bson.M{"$sum": "$count"},
			"by_severity": bson.M{"$push": bson.M{
				"value": "$_id.severity",
				"count": "$count",
			}},
		}},
		{"$sort": bson.D{{Key: "_id", Value: 1}}},
	}

	cursor, err := a.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to build error time series: %w", err)
	}
	defer cursor.Close(ctx)

	points := []out.ErrorSeriesPoint{}
	for cursor.Next(ctx) {
		var point out.ErrorSeriesPoint
		if err := cursor.Decode(&point); err != nil {
			return nil, fmt.Errorf("failed to decode error series point: %w", err)
		}
		points = append(points, point)
	}
	return points, cursor.Err()
}

// ErrorCollectionHealth reports document counts, recent activity, and index
// names for the error log collection.
func (a *ErrorLogAdapter) ErrorCollectionHealth(ctx context.Context) (*out.CollectionHealth, error) {
	return collectionHealth(ctx, a.collection, "timestamp")
}

// =============================================================================
// Interface Compliance
// =============================================================================

var _ out.ErrorLogRepository = (*ErrorLogAdapter)(nil)
var _ out.ErrorAnalyticsRepository = (*ErrorLogAdapter)(nil)
