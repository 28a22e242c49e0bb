// Command server runs the summary engine and its HTTP API.
//
// Startup order: environment and configuration, logging, tracing, database,
// event queue, engine services, background processor, HTTP server. Shutdown
// reverses it: the HTTP server drains first, then the processor finishes its
// in-flight pass, then the event queue and database close.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-task-backend/internal/config"
	"github.com/tbourn/go-task-backend/internal/events"
	"github.com/tbourn/go-task-backend/internal/generator"
	httpapi "github.com/tbourn/go-task-backend/internal/http"
	"github.com/tbourn/go-task-backend/internal/observability"
	"github.com/tbourn/go-task-backend/internal/repo"
	"github.com/tbourn/go-task-backend/internal/services"
	"github.com/tbourn/go-task-backend/internal/sysutil"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	// Logging.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	sysutil.SetLogLevel(cfg.LogLevel)
	log.Info().Str("version", version).Str("port", cfg.Port).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tracing.
	otelShutdown, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup")
	}

	// Database.
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	// Outbound events, drained by a logging subscriber.
	queue := events.NewQueue(cfg.Engine.EventBuffer)
	go events.Drain(queue, log.Logger)

	// Engine wiring.
	store := repo.Store{}
	gen := generator.NewMarkdownGenerator(db)
	svc := services.NewSummaryService(db, store, gen, cfg.Engine.MaxRetries, log.Logger)
	sched := services.NewScheduler(db, store, svc, queue, cfg.Engine.LookbackDays, log.Logger)
	proc := services.NewProcessor(db, store, svc, sched, services.ProcessorConfig{
		AutoSchedule:    cfg.Engine.AutoSchedule,
		AutoProcess:     cfg.Engine.AutoProcess,
		MaxRetries:      cfg.Engine.MaxRetries,
		RetryDelay:      cfg.Engine.RetryDelay,
		ProcessInterval: cfg.Engine.ProcessInterval,
	}, log.Logger)
	proc.Start(ctx)

	// HTTP transport.
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Engine{Svc: svc, Scheduler: sched, Processor: proc}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	proc.Stop()
	queue.Close()
	if dropped := queue.Dropped(); dropped > 0 {
		log.Warn().Uint64("dropped", dropped).Msg("events dropped during run")
	}

	if err := otelShutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info().Msg("stopped")
}
