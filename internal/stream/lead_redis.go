// Package stream implements the Redis Streams job pipeline.
package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	StreamLeadEnrich = "lead:enrich"
	StreamLeadNotify = "lead:notify"

	// Stuck-message reclaim: entries left unacked this long are claimed
	// back and retried; past maxRetries they move to the dead-letter
	// stream instead.
	pendingCheckInterval = 30 * time.Second
	pendingIdleTime      = 2 * time.Minute
	pendingClaimBatch    = 100

	dlqPrefix = "dlq:"

	readErrorBackoff = time.Second
)

// reclaimAction is the verdict for one pending entry.
type reclaimAction int

const (
	reclaimSkip reclaimAction = iota
	reclaimRetry
	reclaimDeadLetter
)

type RedisStream struct {
	client *redis.Client
	group  string
	log    zerolog.Logger

	batchSize  int
	blockFor   time.Duration
	maxRetries int
}

func NewRedisStream(client *redis.Client, group string, batchSize int, blockFor time.Duration, maxRetries int, log zerolog.Logger) *RedisStream {
	if batchSize < 1 {
		batchSize = 10
	}
	if blockFor <= 0 {
		blockFor = 5 * time.Second
	}
	if maxRetries < 1 {
		maxRetries = 3
	}
	return &RedisStream{
		client:     client,
		group:      group,
		log:        log.With().Str("component", "stream").Logger(),
		batchSize:  batchSize,
		blockFor:   blockFor,
		maxRetries: maxRetries,
	}
}

func (s *RedisStream) CreateGroup(ctx context.Context, stream string) error {
	err := s.client.XGroupCreateMkStream(ctx, stream, s.group, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return err
	}
	return nil
}

func (s *RedisStream) Publish(ctx context.Context, stream string, data any) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"data": jsonData},
	}).Result()
}

// Consume reads new messages for the group and hands them to handler.
// A handler error leaves the message in the pending list; the reclaim
// loop retries it after pendingIdleTime and dead-letters it once it has
// failed maxRetries deliveries.
func (s *RedisStream) Consume(ctx context.Context, stream, consumer string, handler func(id string, data []byte) error) {
	go s.reclaimLoop(ctx, stream, consumer, handler)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.group,
			Consumer: consumer,
			Streams:  []string{stream, ">"},
			Count:    int64(s.batchSize),
			Block:    s.blockFor,
		}).Result()

		if err != nil {
			if err != redis.Nil && ctx.Err() == nil {
				s.log.Error().Err(err).Str("stream", stream).Msg("stream read error")
				time.Sleep(readErrorBackoff)
			}
			continue
		}

		for _, st := range streams {
			for _, msg := range st.Messages {
				s.handleMessage(ctx, st.Stream, msg, handler)
			}
		}
	}
}

func (s *RedisStream) handleMessage(ctx context.Context, stream string, msg redis.XMessage, handler func(id string, data []byte) error) {
	data, ok := msg.Values["data"].(string)
	if !ok {
		// Malformed entries can never succeed; ack so they don't recycle.
		s.log.Error().Str("message_id", msg.ID).Msg("message missing data field")
		if err := s.Ack(ctx, stream, msg.ID); err != nil {
			s.log.Error().Err(err).Str("message_id", msg.ID).Msg("failed to ack message")
		}
		return
	}

	if err := handler(msg.ID, []byte(data)); err != nil {
		s.log.Error().Err(err).Str("message_id", msg.ID).Msg("handler error")
		return
	}

	if err := s.Ack(ctx, stream, msg.ID); err != nil {
		s.log.Error().Err(err).Str("message_id", msg.ID).Msg("failed to ack message")
	}
}

// reclaimLoop periodically claims stuck pending entries back to this
// consumer so a crashed or failed delivery is not lost.
func (s *RedisStream) reclaimLoop(ctx context.Context, stream, consumer string, handler func(id string, data []byte) error) {
	ticker := time.NewTicker(pendingCheckInterval)
	defer ticker.Stop()

	s.log.Info().
		Str("stream", stream).
		Dur("check_interval", pendingCheckInterval).
		Dur("idle_time", pendingIdleTime).
		Int("max_retries", s.maxRetries).
		Msg("pending reclaim started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if backlog, err := s.Pending(ctx, stream); err == nil && backlog > 0 {
				s.log.Info().Str("stream", stream).Int64("backlog", backlog).Msg("pending entries")
			}
			s.reclaimPending(ctx, stream, consumer, handler)
		}
	}
}

func (s *RedisStream) reclaimPending(ctx context.Context, stream, consumer string, handler func(id string, data []byte) error) {
	pending, err := s.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: stream,
		Group:  s.group,
		Start:  "-",
		End:    "+",
		Count:  pendingClaimBatch,
	}).Result()
	if err != nil {
		if err != redis.Nil {
			s.log.Error().Err(err).Str("stream", stream).Msg("failed to list pending entries")
		}
		return
	}

	for _, p := range pending {
		switch s.classifyPending(p.Idle, p.RetryCount) {
		case reclaimSkip:
			continue

		case reclaimDeadLetter:
			s.log.Warn().
				Str("stream", stream).
				Str("message_id", p.ID).
				Int64("deliveries", p.RetryCount).
				Msg("message exceeded max retries, dead-lettering")
			if err := s.deadLetter(ctx, stream, p.ID); err != nil {
				s.log.Error().Err(err).Str("message_id", p.ID).Msg("failed to dead-letter message")
				continue
			}
			if err := s.Ack(ctx, stream, p.ID); err != nil {
				s.log.Error().Err(err).Str("message_id", p.ID).Msg("failed to ack dead-lettered message")
			}

		case reclaimRetry:
			claimed, err := s.client.XClaim(ctx, &redis.XClaimArgs{
				Stream:   stream,
				Group:    s.group,
				Consumer: consumer,
				MinIdle:  pendingIdleTime,
				Messages: []string{p.ID},
			}).Result()
			if err != nil {
				s.log.Error().Err(err).Str("message_id", p.ID).Msg("failed to claim pending message")
				continue
			}

			for _, msg := range claimed {
				s.log.Info().
					Str("stream", stream).
					Str("message_id", msg.ID).
					Dur("idle", p.Idle).
					Int64("deliveries", p.RetryCount).
					Msg("retrying stuck message")
				s.handleMessage(ctx, stream, msg, handler)
			}
		}
	}
}

// classifyPending decides what to do with one pending entry. retryCount
// is Redis's delivery counter, so a message that has already been handed
// out maxRetries times dead-letters instead of recycling.
func (s *RedisStream) classifyPending(idle time.Duration, retryCount int64) reclaimAction {
	if idle < pendingIdleTime {
		return reclaimSkip
	}
	if int(retryCount) >= s.maxRetries {
		return reclaimDeadLetter
	}
	return reclaimRetry
}

// deadLetter copies a failed entry onto the dlq:<stream> stream with
// failure metadata so it can be inspected and replayed by hand.
func (s *RedisStream) deadLetter(ctx context.Context, stream, id string) error {
	messages, err := s.client.XRange(ctx, stream, id, id).Result()
	if err != nil {
		return fmt.Errorf("failed to read message %s for dead-letter: %w", id, err)
	}
	if len(messages) == 0 {
		return fmt.Errorf("message %s not found in stream %s", id, stream)
	}

	values := map[string]any{
		"origin_stream": stream,
		"origin_id":     id,
		"failed_at":     time.Now().UTC().Format(time.RFC3339),
		"group":         s.group,
	}
	for k, v := range messages[0].Values {
		values["origin_"+k] = v
	}

	if err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: dlqPrefix + stream,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("failed to append to %s%s: %w", dlqPrefix, stream, err)
	}
	return nil
}

func (s *RedisStream) Ack(ctx context.Context, stream, id string) error {
	return s.client.XAck(ctx, stream, s.group, id).Err()
}

func (s *RedisStream) Pending(ctx context.Context, stream string) (int64, error) {
	info, err := s.client.XPending(ctx, stream, s.group).Result()
	if err != nil {
		return 0, err
	}
	return info.Count, nil
}
