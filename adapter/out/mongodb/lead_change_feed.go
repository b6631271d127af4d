// Package mongodb implements MongoDB adapters for the application.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lead_server/core/domain"
	"lead_server/core/port/out"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// =============================================================================
// MongoDB Change Feed Adapter
// =============================================================================

const collectionAutomationState = "automation_state"

// ChangeFeedAdapter implements out.LeadChangeFeed on top of MongoDB change
// streams. Resume tokens survive restarts in the automation_state collection,
// keyed by watcher name.
type ChangeFeedAdapter struct {
	leads *mongo.Collection
	state *mongo.Collection
}

// NewChangeFeedAdapter creates a new change feed adapter.
func NewChangeFeedAdapter(db *mongo.Database) *ChangeFeedAdapter {
	return &ChangeFeedAdapter{
		leads: db.Collection(collectionLeads),
		state: db.Collection(collectionAutomationState),
	}
}

type automationStateDocument struct {
	Name        string    `bson:"name"`
	ResumeToken bson.Raw  `bson:"resume_token,omitempty"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// LoadResumeToken returns the stored resume token for the named watcher,
// or nil when none was saved yet.
func (a *ChangeFeedAdapter) LoadResumeToken(ctx context.Context, name string) (any, error) {
	var doc automationStateDocument
	err := a.state.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load resume token: %w", err)
	}
	if len(doc.ResumeToken) == 0 {
		return nil, nil
	}
	return doc.ResumeToken, nil
}

// SaveResumeToken upserts the resume token for the named watcher.
func (a *ChangeFeedAdapter) SaveResumeToken(ctx context.Context, name string, token any) error {
	if token == nil {
		return nil
	}
	raw, ok := token.(bson.Raw)
	if !ok {
		return fmt.Errorf("unexpected resume token type %T", token)
	}

	opts := options.Update().SetUpsert(true)
	update := bson.M{"$set": bson.M{
		"resume_token": raw,
		"updated_at":   time.Now().UTC(),
	}}
	if _, err := a.state.UpdateOne(ctx, bson.M{"name": name}, update, opts); err != nil {
		return fmt.Errorf("failed to save resume token: %w", err)
	}
	return nil
}

// PollInserts opens the insert change stream and drains it for at most
// window, returning the captured leads and the last seen resume token. A
// stale token falls back to a fresh stream rather than failing the poll.
func (a *ChangeFeedAdapter) PollInserts(ctx context.Context, token any, window, pollInterval time.Duration) ([]*domain.LeadRecord, any, error) {
	stream, err := a.openStream(ctx, token, pollInterval)
	if err != nil {
		// Resume tokens expire when the oplog rolls over; restart clean.
		if token != nil {
			stream, err = a.openStream(ctx, nil, pollInterval)
		}
		if err != nil {
			return nil, token, fmt.Errorf("failed to open change stream: %w", err)
		}
	}
	defer stream.Close(ctx)

	pollCtx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	var leads []*domain.LeadRecord
	for stream.Next(pollCtx) {
		var event struct {
			FullDocument domain.LeadRecord `bson:"fullDocument"`
		}
		if err := stream.Decode(&event); err != nil {
			return leads, stream.ResumeToken(), fmt.Errorf("failed to decode change event: %w", err)
		}
		lead := event.FullDocument
		leads = append(leads, &lead)
	}

	last := any(stream.ResumeToken())
	if last == nil || len(stream.ResumeToken()) == 0 {
		last = token
	}

	if err := stream.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return leads, last, fmt.Errorf("change stream error: %w", err)
	}
	return leads, last, nil
}

func (a *ChangeFeedAdapter) openStream(ctx context.Context, token any, maxAwait time.Duration) (*mongo.ChangeStream, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"operationType": "insert"}}},
	}

	opts := options.ChangeStream().
		SetFullDocument(options.UpdateLookup).
		SetMaxAwaitTime(maxAwait)
	if token != nil {
		opts.SetResumeAfter(token)
	}

	return a.leads.Watch(ctx, pipeline, opts)
}

// =============================================================================
// Interface Compliance
// =============================================================================

var _ out.LeadChangeFeed = (*ChangeFeedAdapter)(nil)
