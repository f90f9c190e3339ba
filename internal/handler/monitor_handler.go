package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/aptiva/examgate-backend/internal/config"
	"github.com/aptiva/examgate-backend/internal/middleware"
	"github.com/aptiva/examgate-backend/internal/response"
	"github.com/aptiva/examgate-backend/internal/service"
)

const (
	monitorPingInterval = 30 * time.Second
	monitorWriteTimeout = 10 * time.Second
)

// buildUpgrader creates a WebSocket upgrader with origin validation. An
// empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams attempt lifecycle events to exam supervisors over
// WebSocket, fed by the Redis Pub/Sub channel the attempt engine publishes
// to.
type MonitorHandler struct {
	rdb         *redis.Client
	examService *service.ExamService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, examService *service.ExamService, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		rdb:         rdb,
		examService: examService,
		log:         log.With().Str("component", "monitor_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// MonitorExam godoc
// WS /ws/v1/exams/:id/monitor
// Streams attempt_started / attempt_resumed / attempt_submitted /
// attempt_timeout events for one exam.
func (h *MonitorHandler) MonitorExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	// Same scoping as the exam detail view: professors only see their own
	// exams, admins and principals see everything.
	if _, err := h.examService.GetForUser(c.Request.Context(), claims.User(), examID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("exam_id", examID.String()).
		Str("user_id", claims.UserID.String()).
		Logger()
	wsLog.Info().Msg("Supervisor attached to exam monitor")

	pubsub := h.rdb.Subscribe(c.Request.Context(), config.CacheKey.ExamMonitorChannel(examID.String()))
	defer pubsub.Close()

	forwardEvents(c.Request.Context(), conn, pubsub.Channel(), wsLog)
}

// forwardEvents pumps Pub/Sub payloads to the WebSocket peer until the peer
// disconnects, the request context ends, or the subscription channel closes.
func forwardEvents(ctx context.Context, conn *websocket.Conn, events <-chan *redis.Message, wsLog zerolog.Logger) {
	// Reader goroutine: we never expect client messages, but reading is the
	// only way to notice the peer went away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(monitorPingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-done:
			wsLog.Info().Msg("Supervisor disconnected from exam monitor")
			return

		case <-ctx.Done():
			return

		case msg, ok := <-events:
			if !ok {
				wsLog.Info().Msg("Monitor subscription closed")
				return
			}
			conn.SetWriteDeadline(time.Now().Add(monitorWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				wsLog.Warn().Err(err).Msg("Monitor write failed")
				return
			}

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(monitorWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
