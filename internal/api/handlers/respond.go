package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"reveille/internal/core"
	"reveille/internal/idgen"
)

// AlarmRef is an alarm identifier accepted as a JSON number or string.
// Numeric strings are used verbatim; other strings are hashed to a stable ID.
type AlarmRef struct {
	ID  int
	Set bool
}

// UnmarshalJSON implements json.Unmarshaler
func (r *AlarmRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = AlarmRef{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = AlarmRef{ID: alarmIDFromString(s), Set: s != ""}
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("alarm id must be a number or a string: %w", err)
	}
	*r = AlarmRef{ID: n, Set: true}
	return nil
}

// alarmIDFromString resolves a path or body identifier to an alarm ID
func alarmIDFromString(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return idgen.AlarmID(s)
}

// formatAlarmResponse converts a record to the JSON shape clients consume
func formatAlarmResponse(rec *core.PersistedAlarmRecord) gin.H {
	def := rec.Definition
	response := gin.H{
		"id":               def.ID,
		"message":          def.Message,
		"game_type":        def.GameType,
		"duration_minutes": def.DurationMinutes,
		"trigger_at":       rec.TriggerAt.Format(time.RFC3339),
		"trigger_at_ms":    rec.TriggerAt.UnixMilli(),
		"active":           rec.Active,
		"recurring":        def.IsRecurring(),
	}
	if def.Schedule != nil {
		response["hour"] = def.Schedule.Hour
		response["minute"] = def.Schedule.Minute
		response["selected_days"] = def.Schedule.Weekdays
	}
	return response
}

// formatStatusResponse converts the ringing view to JSON
func formatStatusResponse(status core.RingingStatus) gin.H {
	response := gin.H{
		"state":           status.State,
		"original_volume": status.OriginalVolume,
		"target_volume":   status.TargetVolume,
		"enforcing":       status.Enforcing,
		"focus_held":      status.FocusHeld,
	}
	if status.Alarm != nil {
		response["alarm_id"] = status.Alarm.ID
		response["message"] = status.Alarm.Message
		response["game_type"] = status.Alarm.GameType
		response["duration_minutes"] = status.Alarm.DurationMinutes
	}
	return response
}

// respondError maps engine errors to status codes
func respondError(c *gin.Context, logger *slog.Logger, msg string, err error, attrs ...any) {
	switch {
	case errors.Is(err, core.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{
			"error": err.Error(),
			"code":  "PERMISSION_DENIED",
		})
	case core.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  "VALIDATION_ERROR",
		})
	case errors.Is(err, core.ErrAlarmNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Alarm not found",
			"code":  "ALARM_NOT_FOUND",
		})
	case errors.Is(err, core.ErrNoActiveSession):
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
			"code":  "NO_ACTIVE_SESSION",
		})
	default:
		logger.Error(msg, append(attrs, "component", "api", "error", err)...)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": msg,
			"code":  "INTERNAL_ERROR",
		})
	}
}

// bindOptionalJSON binds the body when one was sent
func bindOptionalJSON(c *gin.Context, obj any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"code":    "INVALID_REQUEST",
			"details": err.Error(),
		})
		return false
	}
	return true
}
