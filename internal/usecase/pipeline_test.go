package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeedMonitor/internal/domain"
	"FeedMonitor/internal/feeds"
	"FeedMonitor/internal/infrastructure/storage"
	"FeedMonitor/internal/metrics"
	"FeedMonitor/internal/scoring"
	"FeedMonitor/pkg/resilience"
)

type stubSource struct {
	fetch func(ctx context.Context, cfg domain.FeedConfig) ([]domain.Item, error)
}

func (s *stubSource) Fetch(ctx context.Context, cfg domain.FeedConfig) ([]domain.Item, error) {
	return s.fetch(ctx, cfg)
}

type stubOracle struct {
	candidates []domain.Candidate
	err        error
}

func (s *stubOracle) Score(context.Context, string) ([]domain.Candidate, error) {
	return s.candidates, s.err
}

// recordingArchiver captures every sample so tests can assert corpus
// membership without touching the filesystem.
type recordingArchiver struct {
	mu       sync.Mutex
	accepted []domain.ScoredItem
	rejected []domain.ScoredItem
	reports  []domain.CycleReport
	fail     bool
}

func (a *recordingArchiver) SaveSample(item domain.ScoredItem, accepted bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return errors.New("disk full")
	}
	if accepted {
		a.accepted = append(a.accepted, item)
	} else {
		a.rejected = append(a.rejected, item)
	}
	return nil
}

func (a *recordingArchiver) SaveReport(report domain.CycleReport) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reports = append(a.reports, report)
	return nil
}

type pipelineFixture struct {
	pipeline *Pipeline
	archiver *recordingArchiver
	matches  *storage.MemoryMatchStore
	registry *feeds.Registry
}

func newPipelineFixture(t *testing.T, feedList []domain.FeedConfig, source *stubSource, oracle *stubOracle) *pipelineFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	marks := storage.NewMemoryMarkStore([]domain.Mark{{ID: "mark-1", Name: "jane#doe"}})
	matchStore := storage.NewMemoryMatchStore(marks, 14)
	policy := resilience.Policy{MaxAttempts: 1}

	matcher := NewMatcher(oracle, marks, matchStore, 0.5, policy, logger)
	archiver := &recordingArchiver{}
	registry := feeds.NewRegistry(feedList)

	pipeline := NewPipeline(PipelineDeps{
		Registry:           registry,
		Source:             source,
		Scorer:             scoring.NewScorer([]string{"k1", "k2", "k3", "k4", "k5"}),
		Archiver:           archiver,
		Matcher:            matcher,
		Metrics:            metrics.New(prometheus.NewRegistry()),
		Logger:             logger,
		RelevanceThreshold: 0.5,
		MaxItemsPerFeed:    2,
	})

	return &pipelineFixture{pipeline: pipeline, archiver: archiver, matches: matchStore, registry: registry}
}

// Five items, three above the 0.5 threshold, cap of two: all three
// accepted items are archived but only the top two are forwarded.
func TestProcessCycleArchivesAllAndCapsForwarding(t *testing.T) {
	items := []domain.Item{
		{ID: "top", Title: "k1 k2 k3 k4 k5"},
		{ID: "high", Title: "k1 k2 k3 k4"},
		{ID: "mid", Title: "k1 k2 k3"},
		{ID: "low", Title: "k1"},
		{ID: "none", Title: "irrelevant"},
	}
	source := &stubSource{fetch: func(context.Context, domain.FeedConfig) ([]domain.Item, error) {
		return items, nil
	}}
	oracle := &stubOracle{candidates: []domain.Candidate{
		{MarkID: "mark-1", Similarity: 0.9},
		{MarkID: "mark-1", Similarity: 0.42},
	}}

	fix := newPipelineFixture(t, []domain.FeedConfig{{URL: "https://a.example/rss", Name: "a"}}, source, oracle)
	report := fix.pipeline.ProcessCycle(context.Background())

	assert.Equal(t, 1, report.FeedsProcessed)
	assert.Equal(t, 5, report.ItemsFound)
	assert.Equal(t, 2, report.ItemsSelected)
	assert.Equal(t, 3, report.PassSaved)
	assert.Equal(t, 2, report.FailSaved)

	require.Len(t, fix.archiver.accepted, 3)
	require.Len(t, fix.archiver.rejected, 2)

	// Only the similarity-0.9 candidate clears the 0.5 match threshold,
	// once per forwarded item.
	assert.Equal(t, 2, report.MatchesCreated)
	stored, err := fix.matches.Query(context.Background(), domain.MatchFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	require.Len(t, fix.archiver.reports, 1)
}

func TestProcessCycleIsolatesFailedFeed(t *testing.T) {
	source := &stubSource{fetch: func(_ context.Context, cfg domain.FeedConfig) ([]domain.Item, error) {
		if cfg.Name == "broken" {
			return nil, errors.New("connection refused")
		}
		return []domain.Item{{ID: "ok-item", Title: "k1 k2 k3"}}, nil
	}}
	oracle := &stubOracle{}

	feedList := []domain.FeedConfig{
		{URL: "https://broken.example/rss", Name: "broken"},
		{URL: "https://healthy.example/rss", Name: "healthy"},
	}
	fix := newPipelineFixture(t, feedList, source, oracle)
	report := fix.pipeline.ProcessCycle(context.Background())

	assert.Equal(t, 1, report.FeedsProcessed)
	require.Len(t, report.FeedDetails, 2)

	broken := report.FeedDetails[0]
	assert.Equal(t, "broken", broken.Name)
	assert.NotEmpty(t, broken.Err)
	assert.Zero(t, broken.ItemsFound)

	healthy := report.FeedDetails[1]
	assert.Equal(t, "healthy", healthy.Name)
	assert.Equal(t, 1, healthy.ItemsFound)
}

func TestProcessCycleContinuesOnArchiveFailure(t *testing.T) {
	source := &stubSource{fetch: func(context.Context, domain.FeedConfig) ([]domain.Item, error) {
		return []domain.Item{{ID: "item", Title: "k1 k2 k3"}}, nil
	}}
	oracle := &stubOracle{candidates: []domain.Candidate{{MarkID: "mark-1", Similarity: 0.9}}}

	fix := newPipelineFixture(t, []domain.FeedConfig{{URL: "https://a.example/rss", Name: "a"}}, source, oracle)
	fix.archiver.fail = true

	report := fix.pipeline.ProcessCycle(context.Background())

	assert.Zero(t, report.PassSaved)
	// Matching proceeds even though archiving failed.
	assert.Equal(t, 1, report.MatchesCreated)
}

func TestProcessCycleUsesSnapshotOfRegistry(t *testing.T) {
	var mu sync.Mutex
	var fetched []string
	source := &stubSource{fetch: func(_ context.Context, cfg domain.FeedConfig) ([]domain.Item, error) {
		mu.Lock()
		fetched = append(fetched, cfg.Name)
		mu.Unlock()
		return nil, nil
	}}

	fix := newPipelineFixture(t, []domain.FeedConfig{{URL: "https://a.example/rss", Name: "a"}}, source, &stubOracle{})
	fix.pipeline.ProcessCycle(context.Background())

	fix.registry.Add(domain.FeedConfig{URL: "https://b.example/rss", Name: "b"})
	fix.pipeline.ProcessCycle(context.Background())

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a", "a", "b"}, fetched)
}
