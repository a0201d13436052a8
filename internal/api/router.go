package api

import (
	"log/slog"
	"time"

	"reveille/internal/api/handlers"
	"reveille/internal/api/middleware"
	"reveille/internal/core"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds dependencies for the API router
type RouterConfig struct {
	Service core.AlarmService
	Events  handlers.Subscriber
	APIKey  string
	Logger  *slog.Logger

	// KeepAlive is the SSE heartbeat interval; zero uses the default
	KeepAlive time.Duration
	// TelegramWebhook is mounted at /telegram/webhook when set
	TelegramWebhook gin.HandlerFunc
}

// NewRouter creates and configures the Gin router
func NewRouter(config RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(config.Logger))
	router.Use(middleware.Logging(config.Logger))
	router.Use(middleware.NoiseFilter(config.Logger))
	router.Use(middleware.ContentType())

	// Unauthenticated endpoints
	healthHandler := handlers.NewHealthHandler(config.Service)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if config.TelegramWebhook != nil {
		// Authenticated by the webhook secret header instead of the API key
		router.POST("/telegram/webhook", config.TelegramWebhook)
	}

	// API v1 routes (with authentication)
	v1 := router.Group("/v1")
	v1.Use(middleware.APIKey(config.APIKey))
	{
		alarmsHandler := handlers.NewAlarmsHandler(config.Service, config.Logger)
		v1.GET("/alarms", alarmsHandler.ListAlarms)
		v1.POST("/alarms", alarmsHandler.CreateAlarm)
		v1.POST("/alarms/recurring", alarmsHandler.CreateRecurringAlarm)
		v1.GET("/alarms/:id", alarmsHandler.GetAlarm)
		v1.DELETE("/alarms/:id", alarmsHandler.DeleteAlarm)
		v1.POST("/alarms/:id/acknowledge", alarmsHandler.Acknowledge)
		v1.POST("/alarms/:id/snooze", alarmsHandler.Snooze)
		v1.POST("/alarms/:id/accept", alarmsHandler.Accept)
		v1.GET("/permissions/exact", alarmsHandler.GetExactPermission)

		ringingHandler := handlers.NewRingingHandler(config.Service, config.Logger)
		v1.GET("/ringing", ringingHandler.GetStatus)
		v1.POST("/ringing/start", ringingHandler.Start)
		v1.POST("/ringing/pause", ringingHandler.Pause)
		v1.POST("/ringing/resume", ringingHandler.Resume)
		v1.POST("/ringing/stop", ringingHandler.Stop)

		if config.Events != nil {
			eventsHandler := handlers.NewEventsHandler(config.Events, config.KeepAlive, config.Logger)
			v1.GET("/events", eventsHandler.Stream)
		}
	}

	return router
}
