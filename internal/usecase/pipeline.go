package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"FeedMonitor/internal/domain"
	"FeedMonitor/internal/feeds"
	"FeedMonitor/internal/metrics"
	"FeedMonitor/internal/ports"
	"FeedMonitor/internal/scoring"
)

const maxConcurrentFeeds = 4

// PipelineDeps wires all driven adapters into the processing pipeline.
type PipelineDeps struct {
	Registry *feeds.Registry
	Source   ports.FeedSource
	Scorer   *scoring.Scorer
	Archiver ports.Archiver
	Matcher  *Matcher
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	RelevanceThreshold float64
	MaxItemsPerFeed    int
}

// Pipeline implements one full processing cycle: fetch, score,
// partition, archive, match, report.
type Pipeline struct {
	deps PipelineDeps
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{deps: deps}
}

// ProcessCycle runs every configured feed once and returns the cycle
// report. Feeds are processed as independent units; a feed's failure is
// recorded in the report and never aborts the others.
func (p *Pipeline) ProcessCycle(ctx context.Context) domain.CycleReport {
	snapshot := p.deps.Registry.Snapshot()
	p.deps.Logger.Info("starting processing cycle", "feeds", len(snapshot))

	report := domain.CycleReport{
		Timestamp:   time.Now().UTC(),
		FeedDetails: make([]domain.FeedReport, len(snapshot)),
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentFeeds)

	for i, feedCfg := range snapshot {
		i, feedCfg := i, feedCfg
		group.Go(func() error {
			feedReport := p.processFeed(groupCtx, feedCfg)

			mu.Lock()
			report.FeedDetails[i] = feedReport
			if feedReport.Err == "" {
				report.FeedsProcessed++
			}
			report.ItemsFound += feedReport.ItemsFound
			report.ItemsSelected += feedReport.ItemsSelected
			report.PassSaved += feedReport.PassSaved
			report.FailSaved += feedReport.FailSaved
			report.MatchesCreated += feedReport.MatchesCreated
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	if err := p.deps.Archiver.SaveReport(report); err != nil {
		p.deps.Logger.Error("save cycle report failed", "error", err)
	}

	p.deps.Logger.Info("completed processing cycle",
		"feeds_processed", report.FeedsProcessed,
		"items_found", report.ItemsFound,
		"items_selected", report.ItemsSelected,
		"pass_saved", report.PassSaved,
		"fail_saved", report.FailSaved,
		"matches_created", report.MatchesCreated)

	return report
}

func (p *Pipeline) processFeed(ctx context.Context, cfg domain.FeedConfig) domain.FeedReport {
	logger := p.deps.Logger.With("feed", cfg.Name)
	feedReport := domain.FeedReport{Name: cfg.Name, URL: cfg.URL}

	items, err := p.deps.Source.Fetch(ctx, cfg)
	if err != nil {
		logger.Error("fetch feed failed", "error", err)
		p.deps.Metrics.IncFeedError()
		feedReport.Err = err.Error()
		return feedReport
	}
	feedReport.ItemsFound = len(items)

	scored := p.deps.Scorer.ScoreAll(items, cfg.Keywords)
	p.deps.Metrics.AddItemsScored(len(scored))

	parts := scoring.Partition(scored, p.deps.RelevanceThreshold, p.deps.MaxItemsPerFeed)
	feedReport.ItemsSelected = len(parts.Forwarded)
	p.deps.Metrics.AddItemsForwarded(len(parts.Forwarded))

	for _, item := range parts.Rejected {
		logger.Debug("rejected item",
			"title", item.Item.Title, "score", item.RelevanceScore)
	}

	// Every scored item is archived; forwarding is capped separately.
	for _, item := range parts.Accepted {
		if err := p.deps.Archiver.SaveSample(item, true); err != nil {
			logger.Warn("archive accepted sample failed", "item", item.Item.ID, "error", err)
			continue
		}
		feedReport.PassSaved++
	}
	for _, item := range parts.Rejected {
		if err := p.deps.Archiver.SaveSample(item, false); err != nil {
			logger.Warn("archive rejected sample failed", "item", item.Item.ID, "error", err)
			continue
		}
		feedReport.FailSaved++
	}

	for _, item := range parts.Forwarded {
		logger.Info("processing item", "title", item.Item.Title, "score", item.RelevanceScore)

		created, err := p.deps.Matcher.MatchItem(ctx, item)
		if err != nil {
			logger.Error("match item failed", "item", item.Item.ID, "error", err)
			continue
		}
		feedReport.MatchesCreated += created
		p.deps.Metrics.AddMatchesCreated(created)
	}

	logger.Info("feed processed",
		"items_found", feedReport.ItemsFound,
		"accepted", len(parts.Accepted),
		"rejected", len(parts.Rejected),
		"selected", feedReport.ItemsSelected,
		"matches_created", feedReport.MatchesCreated)

	return feedReport
}
