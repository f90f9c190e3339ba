package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/aptiva/examgate-backend/internal/config"
)

// AuditEvent is one queued audit trail entry. Events are pushed to Redis and
// persisted in batches by the audit worker so request latency never pays for
// the trail write.
type AuditEvent struct {
	UserID    *uuid.UUID     `json:"user_id,omitempty"`
	Action    string         `json:"action"`
	IPAddress string         `json:"ip_address"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// AuditPublisher enqueues audit events onto the Redis persistence queue.
// Recording is best-effort: a queue failure is logged, never surfaced.
type AuditPublisher struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewAuditPublisher creates a new AuditPublisher.
func NewAuditPublisher(rdb *redis.Client, log zerolog.Logger) *AuditPublisher {
	return &AuditPublisher{
		rdb: rdb,
		log: log.With().Str("component", "audit_publisher").Logger(),
	}
}

// Record enqueues one event. Safe to call on a nil publisher (tests).
func (p *AuditPublisher) Record(ctx context.Context, event AuditEvent) {
	if p == nil || p.rdb == nil {
		return
	}
	event.Timestamp = time.Now().Unix()

	raw, err := json.Marshal(event)
	if err != nil {
		p.log.Error().Err(err).Str("action", event.Action).Msg("Marshal audit event failed")
		return
	}
	if err := p.rdb.RPush(ctx, config.WorkerKey.AuditEventQueue, raw).Err(); err != nil {
		p.log.Warn().Err(err).Str("action", event.Action).Msg("Enqueue audit event failed")
	}
}
