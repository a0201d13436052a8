package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"reveille/internal/core"
)

// RingingHandler drives the ringing session from the alarm UI
type RingingHandler struct {
	service core.AlarmService
	logger  *slog.Logger
}

// NewRingingHandler creates a new ringing handler
func NewRingingHandler(service core.AlarmService, logger *slog.Logger) *RingingHandler {
	return &RingingHandler{
		service: service,
		logger:  logger,
	}
}

// GetStatus returns the session view
// GET /v1/ringing
func (h *RingingHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, formatStatusResponse(h.service.RingingStatus(c.Request.Context())))
}

// Start resumes ringing once the alarm UI is visible
// POST /v1/ringing/start
func (h *RingingHandler) Start(c *gin.Context) {
	h.transition(c, "start", h.service.StartRinging)
}

// Pause silences ringing while the alarm UI is hidden
// POST /v1/ringing/pause
func (h *RingingHandler) Pause(c *gin.Context) {
	h.transition(c, "pause", h.service.PauseRinging)
}

// Resume restarts a paused session
// POST /v1/ringing/resume
func (h *RingingHandler) Resume(c *gin.Context) {
	h.transition(c, "resume", h.service.ResumeRinging)
}

// Stop ends the session; an omitted alarm_id stops whatever rings
// POST /v1/ringing/stop
func (h *RingingHandler) Stop(c *gin.Context) {
	var req struct {
		AlarmID AlarmRef `json:"alarm_id"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}

	if err := h.service.StopRinging(c.Request.Context(), req.AlarmID.ID); err != nil {
		respondError(c, h.logger, "Failed to stop ringing", err, "alarm_id", req.AlarmID.ID)
		return
	}

	c.JSON(http.StatusOK, formatStatusResponse(h.service.RingingStatus(c.Request.Context())))
}

func (h *RingingHandler) transition(c *gin.Context, action string, fn func(context.Context) error) {
	if err := fn(c.Request.Context()); err != nil {
		respondError(c, h.logger, "Failed to "+action+" ringing", err)
		return
	}

	c.JSON(http.StatusOK, formatStatusResponse(h.service.RingingStatus(c.Request.Context())))
}
