package stream

import (
	"context"
	"time"

	"lead_server/core/port/out"

	"github.com/google/uuid"
)

type Producer struct {
	stream *RedisStream
}

func NewProducer(stream *RedisStream) *Producer {
	return &Producer{stream: stream}
}

type Job struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

// EnqueueLeadEnrich publishes an enrichment job for one lead.
func (p *Producer) EnqueueLeadEnrich(ctx context.Context, leadID string) (string, error) {
	job := &Job{
		ID:   uuid.New().String(),
		Type: "lead.enrich",
		Payload: map[string]any{
			"lead_id": leadID,
		},
		CreatedAt: time.Now(),
	}
	return p.stream.Publish(ctx, StreamLeadEnrich, job)
}

var _ out.JobProducer = (*Producer)(nil)
