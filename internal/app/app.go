package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"FeedMonitor/internal/archive"
	"FeedMonitor/internal/config"
	"FeedMonitor/internal/domain"
	"FeedMonitor/internal/feeds"
	"FeedMonitor/internal/httpapi"
	feedinfra "FeedMonitor/internal/infrastructure/feed"
	"FeedMonitor/internal/infrastructure/oracle"
	"FeedMonitor/internal/infrastructure/scheduler"
	"FeedMonitor/internal/infrastructure/storage"
	"FeedMonitor/internal/metrics"
	"FeedMonitor/internal/ports"
	"FeedMonitor/internal/scoring"
	"FeedMonitor/internal/usecase"
	"FeedMonitor/pkg/resilience"
)

// devMarks seed the in-memory record store when no database is wired.
var devMarks = []domain.Mark{
	{ID: "johndo#10000001", Name: "john#doe", Email: "john@example.org"},
	{ID: "janedo#10000002", Name: "jane#doe", Email: "jane@example.org"},
	{ID: "samsmi#10000003", Name: "sam#smith", LinkedIn: "https://linkedin.com/in/samsmith"},
}

// Application wires configuration to use cases and owns the process
// lifecycle: cron triggers, HTTP listener, graceful shutdown.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *feeds.Registry
	runner   *usecase.Runner
	cron     *scheduler.CronScheduler
	server   *http.Server
	db       *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, logger *slog.Logger) (*Application, error) {
	registry := feeds.NewRegistry(cfg.Feeds)

	archiver, err := archive.NewWriter(cfg.Server.OutputDir, cfg.Server.PassDir, cfg.Server.FailDir)
	if err != nil {
		return nil, fmt.Errorf("init archiver: %w", err)
	}

	var (
		db          *sql.DB
		markStore   ports.MarkRepository
		matchStore  ports.MatchRepository
		matchOracle ports.MatchOracle
	)

	// Validation guarantees dev mode and a database DSN are mutually
	// exclusive, so the stub oracle always sees the full mark set.
	if cfg.Embedding.DevMode() {
		memoryMarks := storage.NewMemoryMarkStore(devMarks)
		markStore = memoryMarks
		matchStore = storage.NewMemoryMatchStore(memoryMarks, cfg.Processing.MatchExpirationDays)
		matchOracle = oracle.NewStub(memoryMarks.IDs())
		logger.Info("dev mode: in-memory stores and stub oracle")
	} else {
		db, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		markStore = storage.NewPostgresMarkStore(db)
		matchStore = storage.NewPostgresMatchStore(db, cfg.Processing.MatchExpirationDays)
		matchOracle = oracle.NewClient(cfg.Embedding.Endpoint)
	}

	policy := resilience.DefaultPolicy()
	pipelineMetrics := metrics.New(nil)

	matcher := usecase.NewMatcher(matchOracle, markStore, matchStore,
		*cfg.Processing.MatchThreshold, policy, logger.With("component", "matcher"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Registry:           registry,
		Source:             feedinfra.NewFetcher(nil),
		Scorer:             scoring.NewScorer(cfg.Keywords.Global),
		Archiver:           archiver,
		Matcher:            matcher,
		Metrics:            pipelineMetrics,
		Logger:             logger.With("component", "pipeline"),
		RelevanceThreshold: *cfg.Processing.RelevanceThreshold,
		MaxItemsPerFeed:    cfg.Processing.MaxItemsPerFeed,
	})

	runner := usecase.NewRunner(pipeline, matchStore, pipelineMetrics,
		policy, logger.With("component", "runner"))

	handler := httpapi.New(registry, runner, matchStore, policy,
		logger.With("component", "httpapi"))

	return &Application{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		runner:   runner,
		cron:     scheduler.NewCronScheduler(logger.With("component", "scheduler")),
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           handler.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		db: db,
	}, nil
}

// Run performs an initial cycle, starts the scheduled triggers and the
// HTTP listener, and blocks until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if _, err := a.runner.RunCycle(ctx); err != nil {
		a.logger.Error("initial cycle failed", "error", err)
	}

	if err := a.cron.Schedule(a.cfg.Processing.CheckInterval, func(time.Time) {
		if _, err := a.runner.RunCycle(ctx); err != nil && !errors.Is(err, usecase.ErrCycleInProgress) {
			a.logger.Error("scheduled cycle failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule processing: %w", err)
	}

	if err := a.cron.Schedule(a.cfg.Processing.SweepSchedule, func(time.Time) {
		_, _ = a.runner.Sweep(ctx)
	}); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}

	if err := a.cron.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	return a.shutdown()
}

func (a *Application) shutdown() error {
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := a.cron.Stop(shutdownCtx); err != nil {
		a.logger.Error("scheduler stop failed", "error", err)
	}

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}

	return nil
}
