package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	exact ExactPermissionChecker
}

// ExactPermissionChecker reports whether exact wake-ups are currently permitted
type ExactPermissionChecker interface {
	IsExactSchedulingAllowed(ctx context.Context) bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(exact ExactPermissionChecker) *HealthHandler {
	return &HealthHandler{exact: exact}
}

// GetHealth returns the health status of the service
// GET /health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "UP",
		"service":       "reveille",
		"exact_allowed": h.exact.IsExactSchedulingAllowed(c.Request.Context()),
	})
}
