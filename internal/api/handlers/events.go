package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"reveille/internal/core"
)

// DefaultKeepAlive is the idle interval between SSE heartbeats
const DefaultKeepAlive = 30 * time.Second

// Subscriber provides a stream of outbound notifications
type Subscriber interface {
	Subscribe() (<-chan core.Event, func())
}

// EventsHandler streams ringing notifications as server-sent events
type EventsHandler struct {
	subscriber Subscriber
	keepAlive  time.Duration
	logger     *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(subscriber Subscriber, keepAlive time.Duration, logger *slog.Logger) *EventsHandler {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	return &EventsHandler{
		subscriber: subscriber,
		keepAlive:  keepAlive,
		logger:     logger,
	}
}

// Stream writes every event until the client disconnects
// GET /v1/events
func (h *EventsHandler) Stream(c *gin.Context) {
	events, unsubscribe := h.subscriber.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	h.logger.Debug("Event stream opened", "component", "api", "client_ip", c.ClientIP())

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("Event stream closed", "component", "api", "client_ip", c.ClientIP())
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(string(ev.Type), ev)
		case <-ticker.C:
			c.SSEvent("keepalive", gin.H{"at": time.Now().UnixMilli()})
		}
		c.Writer.Flush()
	}
}
