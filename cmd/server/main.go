package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vytor/lexiflash/internal/analytics"
	"github.com/vytor/lexiflash/internal/api"
	"github.com/vytor/lexiflash/internal/config"
	"github.com/vytor/lexiflash/internal/db"
	"github.com/vytor/lexiflash/internal/engine"
	"github.com/vytor/lexiflash/internal/jobs"
	"github.com/vytor/lexiflash/internal/logger"
	"github.com/vytor/lexiflash/internal/repository/sqlite"
	"github.com/vytor/lexiflash/internal/scheduler"
	"github.com/vytor/lexiflash/internal/services"
	"github.com/vytor/lexiflash/internal/stats"
	"github.com/vytor/lexiflash/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
		logger.WithJSON(strings.EqualFold(cfg.LogFormat, "json")),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("LexiFlash Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("log_format=%s", cfg.LogFormat)
	log.Debug("timezone=%s", cfg.Timezone)
	log.Debug("worker_count=%d", cfg.WorkerCount)
	log.Debug("queue_size=%d", cfg.QueueSize)
	log.Debug("stats_refresh_at=%s", cfg.StatsRefreshAt)

	ctx, cancel := context.WithCancel(logger.NewContext(context.Background(), log))
	defer cancel()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	settings := cfg.EngineSettings()
	loc := cfg.Location()

	wordRepo := sqlite.NewWordRepository(database.DB)
	testRepo := sqlite.NewTestRepository(database.DB)
	statsRepo := sqlite.NewStatsRepository(database.DB)
	perfRepo := sqlite.NewPerformanceRepository(database.DB)
	tx := sqlite.NewTransactor(database.DB)

	statsService := services.NewStatsService(services.StatsDeps{
		Tx:         tx,
		Stats:      statsRepo,
		Tests:      testRepo,
		Words:      wordRepo,
		Perf:       perfRepo,
		Aggregator: stats.New(loc, settings.ExcellentScore, settings.GoodScore),
		Analyzer:   analytics.New(loc, settings),
	})

	srv := &api.Server{
		DB:              database,
		Auth:            api.NewAuthenticator(cfg.JWTSecret),
		WordService:     services.NewWordService(wordRepo),
		TestService:     services.NewTestService(engine.New(settings), wordRepo, testRepo, perfRepo, statsService),
		StatsService:    statsService,
		TransferService: services.NewTransferService(tx, wordRepo, testRepo, statsRepo, perfRepo),
	}

	pool := worker.NewPool(cfg.WorkerCount, cfg.QueueSize)
	pool.Start(ctx)

	sched := scheduler.New(loc, cfg.StatsRefreshAt, statsService, jobs.NewWorkerQueue(pool, statsService))
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler: %v", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping scheduler")
	sched.Stop()

	log.Debug("stopping worker pool")
	pool.Stop()

	log.Info("===========================================")
	log.Info("LexiFlash Server Stopped")
	log.Info("===========================================")
}
