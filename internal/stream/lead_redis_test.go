package stream

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestClassifyPending(t *testing.T) {
	s := NewRedisStream(nil, "leadserver", 10, 5*time.Second, 3, zerolog.Nop())

	tests := []struct {
		name       string
		idle       time.Duration
		retryCount int64
		want       reclaimAction
	}{
		{name: "fresh entry left alone", idle: 10 * time.Second, retryCount: 1, want: reclaimSkip},
		{name: "just under idle threshold left alone", idle: pendingIdleTime - time.Second, retryCount: 1, want: reclaimSkip},
		{name: "stuck entry retried", idle: pendingIdleTime, retryCount: 1, want: reclaimRetry},
		{name: "stuck entry under retry cap retried", idle: 5 * time.Minute, retryCount: 2, want: reclaimRetry},
		{name: "retry cap reached dead-letters", idle: 5 * time.Minute, retryCount: 3, want: reclaimDeadLetter},
		{name: "past retry cap dead-letters", idle: time.Hour, retryCount: 9, want: reclaimDeadLetter},
		{name: "exhausted but not idle waits", idle: time.Second, retryCount: 9, want: reclaimSkip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.classifyPending(tt.idle, tt.retryCount); got != tt.want {
				t.Errorf("classifyPending(%v, %d) = %v, want %v", tt.idle, tt.retryCount, got, tt.want)
			}
		})
	}
}

func TestNewRedisStreamDefaults(t *testing.T) {
	tests := []struct {
		name           string
		batchSize      int
		blockFor       time.Duration
		maxRetries     int
		wantBatch      int
		wantBlock      time.Duration
		wantMaxRetries int
	}{
		{
			name:      "zero values fall to defaults",
			wantBatch: 10, wantBlock: 5 * time.Second, wantMaxRetries: 3,
		},
		{
			name:      "negative values fall to defaults",
			batchSize: -1, blockFor: -time.Second, maxRetries: -5,
			wantBatch: 10, wantBlock: 5 * time.Second, wantMaxRetries: 3,
		},
		{
			name:      "explicit values pass through",
			batchSize: 25, blockFor: time.Second, maxRetries: 7,
			wantBatch: 25, wantBlock: time.Second, wantMaxRetries: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRedisStream(nil, "leadserver", tt.batchSize, tt.blockFor, tt.maxRetries, zerolog.Nop())
			if s.batchSize != tt.wantBatch || s.blockFor != tt.wantBlock || s.maxRetries != tt.wantMaxRetries {
				t.Errorf("got (batch %d, block %v, retries %d), want (%d, %v, %d)",
					s.batchSize, s.blockFor, s.maxRetries, tt.wantBatch, tt.wantBlock, tt.wantMaxRetries)
			}
		})
	}
}
