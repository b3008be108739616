package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"personalization-service/internal/adaptive"
	"personalization-service/internal/broadcast"
	"personalization-service/internal/config"
	"personalization-service/internal/event"
	"personalization-service/internal/generator"
	"personalization-service/internal/handlers"
	"personalization-service/internal/persistence"
	"personalization-service/internal/persistence/badgerdb"
	"personalization-service/internal/persistence/memory"
	"personalization-service/internal/persistence/mongodb"
	"personalization-service/internal/persistence/redis"
	"personalization-service/internal/prefs"
	"personalization-service/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system env")
	}
	cfg := config.Load()

	log, err := newLogger(cfg.Server.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := newBackend(ctx, cfg.Backend)
	if err != nil {
		log.Fatal("backend init failed", zap.String("kind", cfg.Backend.Kind), zap.Error(err))
	}
	defer backend.Close(context.Background())

	// Observability sink: RabbitMQ when configured, structured log
	// otherwise.
	var sink event.Sink
	if cfg.RabbitMQ.URI != "" && cfg.RabbitMQ.Exchange != "" {
		publisher, err := event.NewPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			log.Fatal("rabbitmq connect failed", zap.Error(err))
		}
		defer publisher.Close()
		sink = publisher
	} else {
		log.Info("RabbitMQ not configured, events go to the log only")
		sink = event.NewLogSink(log)
	}

	gateway := persistence.NewGateway(backend, persistence.Options{
		Key:            cfg.Backend.Key,
		DebounceWindow: cfg.Persistence.DebounceWindow,
		CacheTTL:       cfg.Persistence.CacheTTL,
		Retry: persistence.RetryConfig{
			MaxAttempts:    cfg.Persistence.RetryMaxAttempts,
			InitialBackoff: cfg.Persistence.RetryInitialBackoff,
			MaxBackoff:     cfg.Persistence.RetryMaxBackoff,
			BackoffFactor:  cfg.Persistence.RetryBackoffFactor,
			JitterFactor:   cfg.Persistence.RetryJitterFactor,
		},
	}, sink, log)

	broadcaster := broadcast.New(log)
	initial := service.Bootstrap(ctx, gateway, log)
	store := prefs.NewStore(initial, broadcaster, gateway, log)

	// Every commit is surfaced as a public event with the changed
	// field names.
	broadcaster.Subscribe(func(old, new *prefs.Snapshot, changed []string) {
		sink.Emit(event.TypePreferencesUpdated, map[string]any{
			"version": new.Version(),
			"changed": changed,
		})
	})

	gen := generator.New(log, sink)
	prefService := service.NewPreferenceService(store, gateway, sink, log)
	sessionService := service.NewSessionService(store, gen, adaptive.Config{
		RaiseStreak: cfg.Adaptive.RaiseStreak,
		LowerStreak: cfg.Adaptive.LowerStreak,
	}, sink, log)

	prefHandler := handlers.NewPreferenceHandler(prefService)
	sessionHandler := handlers.NewSessionHandler(sessionService)

	gin.SetMode(cfg.Server.GinMode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	prefRoutes := r.Group("/api/v1/preferences")
	{
		prefRoutes.GET("/", prefHandler.GetPreferences)
		prefRoutes.PATCH("/", prefHandler.UpdatePreferences)
		prefRoutes.GET("/schema", prefHandler.GetSchema)
		prefRoutes.GET("/ai-context", prefHandler.GetAIContext)
	}

	sessionRoutes := r.Group("/api/v1/sessions")
	{
		sessionRoutes.POST("/", sessionHandler.CreateSession)
		sessionRoutes.GET("/:id", sessionHandler.GetSession)
		sessionRoutes.POST("/:id/answers", sessionHandler.SubmitAnswer)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}
	go func() {
		log.Info("listening", zap.String("port", cfg.Server.Port), zap.String("backend", cfg.Backend.Kind))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown", zap.Error(err))
	}
	if err := prefService.Shutdown(shutdownCtx); err != nil {
		log.Warn("flush on shutdown failed", zap.Error(err))
	}
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "prod" || mode == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func newBackend(ctx context.Context, cfg config.BackendConfig) (persistence.Backend, error) {
	switch cfg.Kind {
	case "memory":
		return memory.New(), nil
	case "mongo":
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required for the mongo backend")
		}
		return mongodb.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
		return redis.New(ctx, cfg.RedisAddr)
	case "badger":
		return badgerdb.New(cfg.BadgerPath)
	default:
		return nil, fmt.Errorf("unknown backend kind %q", cfg.Kind)
	}
}
