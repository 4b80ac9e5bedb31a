package gateway

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stratten/Collaborative-LLM-Refinement/internal/models"
)

const (
	// Buffered per subscriber; events are dropped when a slow client falls
	// behind. Progress streaming is best-effort with no replay.
	subscriberBuffer = 32

	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// ProgressHub fans refinement progress events out to WebSocket subscribers.
// It implements orchestration.ProgressSink.
type ProgressHub struct {
	mu       sync.RWMutex
	subs     map[string]map[chan models.ProgressEvent]struct{}
	tracer   trace.Tracer
	upgrader websocket.Upgrader
}

// NewProgressHub creates a progress hub
func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		subs:   make(map[string]map[chan models.ProgressEvent]struct{}),
		tracer: otel.Tracer("progress-hub"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: Implement proper CORS origin checking for production
				return true
			},
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Publish delivers an event to every subscriber of the event's session.
// Slow subscribers are skipped rather than blocking the pipeline.
func (h *ProgressHub) Publish(event models.ProgressEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[event.SessionID] {
		select {
		case ch <- event:
		default:
			logrus.WithField("session_id", event.SessionID).Debug("Dropping progress event for slow subscriber")
		}
	}
}

// subscribe registers a subscriber channel for a session and returns an
// unsubscribe function.
func (h *ProgressHub) subscribe(sessionID string) (chan models.ProgressEvent, func()) {
	ch := make(chan models.ProgressEvent, subscriberBuffer)

	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[chan models.ProgressEvent]struct{})
	}
	h.subs[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.subs[sessionID], ch)
		if len(h.subs[sessionID]) == 0 {
			delete(h.subs, sessionID)
		}
		h.mu.Unlock()
	}
}

// StreamProgress handles WebSocket /api/ws/refinements/:id
// @Summary Stream refinement progress
// @Description WebSocket endpoint streaming progress events for a session; best-effort, no replay
// @Tags refinements
// @Param id path string true "Session ID"
// @Param token query string false "JWT token (WebSocket auth)"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /ws/refinements/{id} [get]
func (h *ProgressHub) StreamProgress(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "progress_hub.stream_progress")
	defer span.End()

	sessionID := c.Param("id")
	span.SetAttributes(attribute.String("session_id", sessionID))

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		span.RecordError(err)
		logrus.WithError(err).Warn("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	events, cancel := h.subscribe(sessionID)
	defer cancel()

	logrus.WithField("session_id", sessionID).Info("Progress subscriber connected")

	// Drain client messages so close frames and pongs are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(event); err != nil {
				logrus.WithError(err).Debug("Progress subscriber write failed")
				return
			}
			if event.Completed {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "refinement complete"))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
