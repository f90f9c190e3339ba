package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/aptiva/examgate-backend/internal/config"
)

const (
	AuditBatchSize    = 50
	AuditBatchTimeout = 2 * time.Second
	auditPollTimeout  = 1 * time.Second // Redis rejects BLPop timeouts below 1s
)

// AuditWorker drains the audit event queue and persists the trail in
// batches, so request handlers never pay for an audit write.
type AuditWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewAuditWorker creates a new AuditWorker.
func NewAuditWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "audit_worker").Logger(),
	}
}

type auditPayload struct {
	UserID    *uuid.UUID     `json:"user_id,omitempty"`
	Action    string         `json:"action"`
	IPAddress string         `json:"ip_address"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// Start runs the worker loop until the context is cancelled. Call in a
// goroutine.
func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AuditWorker started")

	buffer := make([]*auditPayload, 0, AuditBatchSize)
	lastFlush := time.Now()

	for {
		if len(buffer) > 0 &&
			(len(buffer) >= AuditBatchSize || time.Since(lastFlush) >= AuditBatchTimeout) {
			w.flushSafe(ctx, buffer)
			buffer = buffer[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, auditPollTimeout, config.WorkerKey.AuditEventQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue // queue empty, loop back to the flush timer
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		var payload auditPayload
		if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
			// Malformed JSON can never succeed on retry. Log and drop.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed audit event")
			continue
		}
		buffer = append(buffer, &payload)
	}
}

// flushSafe tries a bulk insert first, then recovers row by row.
func (w *AuditWorker) flushSafe(ctx context.Context, batch []*auditPayload) {
	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
	}
}

func (w *AuditWorker) bulkInsert(ctx context.Context, batch []*auditPayload) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, p := range batch {
		metadata, err := json.Marshal(p.Metadata)
		if err != nil {
			return err
		}
		rows = append(rows, []interface{}{
			p.UserID, p.Action, p.IPAddress, metadata, time.Unix(p.Timestamp, 0),
		})
	}

	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"audit_logs"},
		[]string{"user_id", "action", "ip_address", "metadata", "created_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (w *AuditWorker) fallbackInsert(ctx context.Context, batch []*auditPayload) {
	requeueList := make([]*auditPayload, 0)

	for _, p := range batch {
		metadata, err := json.Marshal(p.Metadata)
		if err != nil {
			w.log.Error().Str("action", p.Action).Msg("Dropping audit event with unmarshalable metadata")
			continue
		}

		_, err = w.pool.Exec(ctx,
			`INSERT INTO audit_logs (user_id, action, ip_address, metadata, created_at)
			 VALUES ($1, $2, $3, $4::jsonb, $5)`,
			p.UserID, p.Action, p.IPAddress, metadata, time.Unix(p.Timestamp, 0),
		)
		if err != nil {
			w.log.Error().Err(err).Str("action", p.Action).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, p)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *AuditWorker) requeue(ctx context.Context, items []*auditPayload) {
	pipe := w.rdb.Pipeline()
	for _, p := range items {
		data, _ := json.Marshal(p)
		pipe.RPush(ctx, config.WorkerKey.AuditEventQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue audit events. Data loss occurred.")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed audit events")
	// Avoid thrashing while the database is down.
	time.Sleep(2 * time.Second)
}

func (w *AuditWorker) shutdown(buffer []*auditPayload) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
