// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discount-code-service/internal/config"
	"discount-code-service/internal/infra/api"
	"discount-code-service/internal/infra/codegen"
	pg "discount-code-service/internal/infra/db/postgres"
	"discount-code-service/internal/infra/logging"
	"discount-code-service/internal/infra/metrics"
	red "discount-code-service/internal/infra/redis"
	"discount-code-service/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logging)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	statusCache := red.NewCodeStatusCache(redisClient, cfg.Redis.TTL, cfg.Redis.OpTimeout)

	// ---- Engine ----
	codeRepo := pg.NewCodeRepo(pool)
	inserter := pg.NewCopyBulkInserter(pool)
	engine := usecase.NewDiscountUseCase(
		codegen.New(),
		codeRepo,
		inserter,
		statusCache,
		usecase.Options{
			MaxPerRequest:          cfg.Codes.MaxPerRequest,
			BatchSize:              cfg.Codes.BatchSize,
			ExistenceChunk:         cfg.Codes.ExistenceChunk,
			MaxConsecutiveFailures: cfg.Codes.MaxConsecutiveFailures,
		},
		logger,
	)

	// ---- HTTP ----
	srv := api.NewServer(engine, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	cancel()
}
