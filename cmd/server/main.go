package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobmate/interview/internal/ai"
	_ "jobmate/interview/internal/ai/gemini"
	_ "jobmate/interview/internal/ai/mock"
	"jobmate/interview/internal/config"
	"jobmate/interview/internal/events"
	"jobmate/interview/internal/handlers"
	"jobmate/interview/internal/jobs"
	"jobmate/interview/internal/live"
	"jobmate/interview/internal/metrics"
	"jobmate/interview/internal/models"
	"jobmate/interview/internal/routers"
	"jobmate/interview/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.InterviewSession{}, &models.InterviewQuestion{}, &models.InterviewResponse{}); err != nil {
		return nil, err
	}

	return db, nil
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.Duration("heartbeat_interval", cfg.HeartbeatInterval))

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	provider, err := ai.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	sessions := session.NewManager(db, logger)

	// Lifecycle events are optional; without Redis the session rows are
	// still the durable record.
	var publisher *events.Publisher
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		publisher = events.NewPublisher(rdb, logger)
		logger.Info("Lifecycle event publishing enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	orchestrator := live.NewOrchestrator(cfg, sessions, provider, publisher, logger)
	go orchestrator.StartHeartbeatLoop()

	sweeper := jobs.NewSessionSweeper(sessions, orchestrator.Registry(), publisher, cfg.SweepSchedule, logger)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start session sweeper", zap.Error(err))
	}

	healthHandler := handlers.NewHealthHandler(provider, db, cfg)

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "https://app.jobmate.dev"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", "X-User-ID"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware("interview"))

	routers.HealthRoutes(router, healthHandler)
	routers.SessionRoutes(router, orchestrator)

	serverAddr := ":" + cfg.Port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	sweeper.Stop()
	orchestrator.Stop()

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Interview service exited")
}
