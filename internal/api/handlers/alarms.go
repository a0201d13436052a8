package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"reveille/internal/core"
	"reveille/internal/idgen"
)

// AlarmsHandler handles alarm scheduling and user actions on alarms
type AlarmsHandler struct {
	service core.AlarmService
	logger  *slog.Logger
}

// NewAlarmsHandler creates a new alarms handler
func NewAlarmsHandler(service core.AlarmService, logger *slog.Logger) *AlarmsHandler {
	return &AlarmsHandler{
		service: service,
		logger:  logger,
	}
}

// CreateAlarm arms a one-shot alarm
// POST /v1/alarms
func (h *AlarmsHandler) CreateAlarm(c *gin.Context) {
	var req struct {
		ID              AlarmRef `json:"id"`
		Message         string   `json:"message"`
		GameType        string   `json:"game_type"`
		DurationMinutes int      `json:"duration_minutes" binding:"gte=0"`
		DelaySeconds    *int     `json:"delay_seconds" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"code":    "INVALID_REQUEST",
			"details": err.Error(),
		})
		return
	}

	def := core.AlarmDefinition{
		ID:              req.ID.ID,
		Message:         req.Message,
		GameType:        req.GameType,
		DurationMinutes: req.DurationMinutes,
	}
	if !req.ID.Set {
		def.ID = idgen.NewAlarmID()
	}

	rec, err := h.service.Schedule(c.Request.Context(), def, *req.DelaySeconds)
	if err != nil {
		respondError(c, h.logger, "Failed to schedule alarm", err, "alarm_id", def.ID)
		return
	}

	c.JSON(http.StatusCreated, formatAlarmResponse(rec))
}

// CreateRecurringAlarm arms an alarm at hour:minute on the selected weekdays
// POST /v1/alarms/recurring
func (h *AlarmsHandler) CreateRecurringAlarm(c *gin.Context) {
	var req struct {
		ID              AlarmRef `json:"id"`
		Name            string   `json:"name"`
		Hour            *int     `json:"hour" binding:"required"`
		Minute          *int     `json:"minute" binding:"required"`
		SelectedDays    []int    `json:"selected_days"`
		GameType        string   `json:"game_type"`
		DurationMinutes int      `json:"duration_minutes" binding:"gte=0"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"code":    "INVALID_REQUEST",
			"details": err.Error(),
		})
		return
	}

	def := core.AlarmDefinition{
		ID:              req.ID.ID,
		Message:         req.Name,
		GameType:        req.GameType,
		DurationMinutes: req.DurationMinutes,
		Schedule: &core.WeeklySchedule{
			Hour:     *req.Hour,
			Minute:   *req.Minute,
			Weekdays: req.SelectedDays,
		},
	}
	if !req.ID.Set {
		def.ID = idgen.NewAlarmID()
	}

	rec, err := h.service.ScheduleRecurring(c.Request.Context(), def)
	if err != nil {
		respondError(c, h.logger, "Failed to schedule recurring alarm", err, "alarm_id", def.ID)
		return
	}

	c.JSON(http.StatusCreated, formatAlarmResponse(rec))
}

// ListAlarms returns every stored alarm ordered by trigger time
// GET /v1/alarms
func (h *AlarmsHandler) ListAlarms(c *gin.Context) {
	records, err := h.service.ListAlarms(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Failed to retrieve alarms", err)
		return
	}

	response := make([]gin.H, 0, len(records))
	for _, rec := range records {
		response = append(response, formatAlarmResponse(rec))
	}

	c.JSON(http.StatusOK, response)
}

// GetAlarm returns a single alarm
// GET /v1/alarms/:id
func (h *AlarmsHandler) GetAlarm(c *gin.Context) {
	alarmID := alarmIDFromString(c.Param("id"))

	rec, err := h.service.GetAlarm(c.Request.Context(), alarmID)
	if err != nil {
		respondError(c, h.logger, "Failed to retrieve alarm", err, "alarm_id", alarmID)
		return
	}

	c.JSON(http.StatusOK, formatAlarmResponse(rec))
}

// DeleteAlarm disarms and deletes an alarm
// DELETE /v1/alarms/:id
func (h *AlarmsHandler) DeleteAlarm(c *gin.Context) {
	alarmID := alarmIDFromString(c.Param("id"))

	if err := h.service.Cancel(c.Request.Context(), alarmID); err != nil {
		respondError(c, h.logger, "Failed to cancel alarm", err, "alarm_id", alarmID)
		return
	}

	c.Status(http.StatusNoContent)
}

// Acknowledge dismisses the ringing alarm and suppresses repeats
// POST /v1/alarms/:id/acknowledge
func (h *AlarmsHandler) Acknowledge(c *gin.Context) {
	alarmID := alarmIDFromString(c.Param("id"))

	var req struct {
		SuppressSeconds *int `json:"suppress_seconds" binding:"omitempty,gte=0"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}

	if err := h.service.Acknowledge(c.Request.Context(), alarmID, req.SuppressSeconds); err != nil {
		respondError(c, h.logger, "Failed to acknowledge alarm", err, "alarm_id", alarmID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alarm_id": alarmID, "status": "acknowledged"})
}

// Snooze stops the ringing alarm and re-arms it shortly
// POST /v1/alarms/:id/snooze
func (h *AlarmsHandler) Snooze(c *gin.Context) {
	alarmID := alarmIDFromString(c.Param("id"))

	if err := h.service.Snooze(c.Request.Context(), alarmID); err != nil {
		respondError(c, h.logger, "Failed to snooze alarm", err, "alarm_id", alarmID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alarm_id": alarmID, "status": "snoozed"})
}

// Accept stops the ringing alarm after the user answered it
// POST /v1/alarms/:id/accept
func (h *AlarmsHandler) Accept(c *gin.Context) {
	alarmID := alarmIDFromString(c.Param("id"))

	if err := h.service.Accept(c.Request.Context(), alarmID); err != nil {
		respondError(c, h.logger, "Failed to accept alarm", err, "alarm_id", alarmID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alarm_id": alarmID, "status": "accepted"})
}

// GetExactPermission reports whether exact wake-ups are permitted
// GET /v1/permissions/exact
func (h *AlarmsHandler) GetExactPermission(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"allowed": h.service.IsExactSchedulingAllowed(c.Request.Context()),
	})
}
