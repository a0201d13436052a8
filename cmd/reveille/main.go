package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"reveille/config"
	"reveille/internal/api"
	"reveille/internal/bot"
	"reveille/internal/clock"
	"reveille/internal/delivery"
	"reveille/internal/engine"
	"reveille/internal/events"
	"reveille/internal/logging"
	"reveille/internal/recovery"
	"reveille/internal/ringing"
	"reveille/internal/scheduler"
	"reveille/internal/storage"
	"reveille/internal/storage/badger"
	"reveille/internal/storage/memory"
	"reveille/internal/storage/sqlite"
	"reveille/internal/timer"

	"github.com/gin-gonic/gin"
)

const (
	shutdownTimeout   = 10 * time.Second
	defaultConfigPath = "config.json"
	eventBufferSize   = 32
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Parse command-line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file (.json, .yaml or .yml)")
	useEnv := flag.Bool("env", false, "Load configuration from environment variables")
	flag.Parse()

	// Load configuration
	var cfg *config.Config
	var err error

	if *useEnv {
		cfg, err = config.LoadFromEnv()
	} else {
		cfg, err = config.Load(*configPath)
	}

	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(logging.LoggerConfig{
		Format: cfg.Logging.Format,
		Level:  logging.ParseLevel(cfg.Logging.Level),
	})
	slog.SetDefault(logger)

	loc := cfg.Location()
	clk := clock.RealClock{Location: loc}

	// Initialize storage
	logger.Info("Opening storage", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path)
	kv, err := openStorage(cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	store := storage.NewAlarmStore(kv, loc)
	defer store.Close()

	// Timer port and scheduler
	heapTimer := timer.NewHeapTimer(clk, cfg.MaxSleep(), logger)
	authorizer := timer.NewStaticAuthorizer(!cfg.Scheduling.RequireExactPermission || cfg.Scheduling.ExactAllowed)
	sched := scheduler.NewScheduler(store, heapTimer, authorizer, clk, logger)

	// Ringing session
	platform := ringing.NewPlatform(logger)
	enforcer := ringing.NewVolumeEnforcer(platform, clk, cfg.EnforceInterval(), logger)
	session := ringing.NewSession(platform, enforcer, logger)

	// Outbound events
	bus := events.NewBus(eventBufferSize, logger)
	bus.AddSink(events.LogSink{Logger: logger.With("component", "events-log")})

	// Engine facade, wrapped for call logging
	eng := engine.New(sched, store, session, bus, clk, engine.Options{
		SnoozeSeconds:   cfg.Ringing.SnoozeSeconds,
		SuppressSeconds: cfg.Ringing.SuppressSeconds,
	}, logger)
	service := logging.NewAlarmServiceLogger(eng, logger)

	surfaces := []delivery.Surface{delivery.NewLogSurface(logger)}

	// Optional Telegram bridge
	var webhook gin.HandlerFunc
	if cfg.TelegramEnabled() {
		logger.Info("Starting Telegram bridge", "chats", len(cfg.Telegram.ChatIDs))
		botAPI, err := bot.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return err
		}
		telegram := bot.NewBot(botAPI, service, bot.Config{
			AllowedUsers: cfg.Telegram.AllowedUsers,
			ChatIDs:      cfg.Telegram.ChatIDs,
			Location:     loc,
		}, logger)
		bus.AddSink(telegram)
		surfaces = append(surfaces, telegram)
		webhook = bot.NewWebhookHandler(telegram, cfg.Telegram.WebhookSecret, logger).HandleWebhook
	}

	// Fired timers flow into the delivery handler
	handler := delivery.NewHandler(store, session, sched, bus, clk, logger, surfaces...)
	heapTimer.SetHandler(handler.OnFired)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Re-arm alarms that survived the restart
	report, err := recovery.NewJob(store, sched, clk, logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("boot recovery failed: %w", err)
	}
	logger.Info("Boot recovery finished",
		"rearmed", report.Rearmed,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)

	router := api.NewRouter(api.RouterConfig{
		Service:         service,
		Events:          bus,
		APIKey:          cfg.Security.APIKey,
		Logger:          logger,
		TelegramWebhook: webhook,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		// No WriteTimeout: /v1/events streams indefinitely
	}

	g, gctx := errgroup.WithContext(ctx)

	timerDone := make(chan struct{})
	g.Go(func() error {
		defer close(timerDone)
		return heapTimer.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Starting graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// a delivery still running on the timer goroutine could restart the session
		select {
		case <-timerDone:
		case <-shutdownCtx.Done():
			logger.Warn("Timer loop did not stop before shutdown deadline")
		}

		if err := session.Stop(shutdownCtx); err != nil {
			logger.Error("Failed to stop ringing session", "error", err)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		bus.Close()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// openStorage opens the configured key/value backend
func openStorage(cfg config.StorageConfig, logger *slog.Logger) (storage.KV, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg.Path)
	case config.DriverBadger:
		badgerCfg := badger.DefaultConfig(cfg.Path)
		badgerCfg.Logger = logger.With("component", "badger")
		return badger.Open(badgerCfg)
	case config.DriverMemory:
		logger.Warn("Using in-memory storage, alarms will not survive a restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
