package stream

import (
	"context"

	"lead_server/core/service/lead"
	"lead_server/pkg/apperr"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Consumer drains the enrichment stream and applies enrichment through the
// lead service. Failed jobs stay unacked and are redelivered to the group.
type Consumer struct {
	stream *RedisStream
	leads  *lead.Service
	name   string
	log    zerolog.Logger
}

func NewConsumer(stream *RedisStream, leads *lead.Service, name string, log zerolog.Logger) *Consumer {
	return &Consumer{
		stream: stream,
		leads:  leads,
		name:   name,
		log:    log.With().Str("component", "consumer").Str("consumer", name).Logger(),
	}
}

func (c *Consumer) Start(ctx context.Context) {
	if err := c.stream.CreateGroup(ctx, StreamLeadEnrich); err != nil {
		c.log.Error().Err(err).Str("stream", StreamLeadEnrich).Msg("failed to create group")
	}

	go c.consume(ctx, StreamLeadEnrich)
}

func (c *Consumer) consume(ctx context.Context, stream string) {
	c.stream.Consume(ctx, stream, c.name, func(id string, data []byte) error {
		var job Job
		if err := json.Unmarshal(data, &job); err != nil {
			c.log.Error().Err(err).Str("message_id", id).Msg("failed to unmarshal job")
			return err
		}

		switch job.Type {
		case "lead.enrich":
			return c.handleEnrich(ctx, &job)
		default:
			c.log.Warn().Str("type", job.Type).Msg("unknown job type")
			return nil
		}
	})
}

func (c *Consumer) handleEnrich(ctx context.Context, job *Job) error {
	leadID, _ := job.Payload["lead_id"].(string)
	if leadID == "" {
		c.log.Warn().Str("job_id", job.ID).Msg("enrich job missing lead_id")
		return nil
	}

	result, err := c.leads.Enrich(ctx, leadID)
	if err != nil {
		// A missing lead never becomes retriable; ack and move on.
		if ae := apperr.AsAppError(err); ae != nil && ae.Code == apperr.CodeNotFound {
			c.log.Warn().Str("lead_id", leadID).Msg("enrich job for unknown lead")
			return nil
		}
		c.log.Error().Err(err).Str("lead_id", leadID).Msg("enrichment failed")
		return err
	}

	c.log.Info().
		Str("lead_id", leadID).
		Str("tier", string(result.Enrichment.Insights.IdealSoftwareTier)).
		Msg("lead enriched")
	return nil
}
