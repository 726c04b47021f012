package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeedMonitor/internal/domain"
	"FeedMonitor/internal/infrastructure/storage"
	"FeedMonitor/pkg/resilience"
)

func newMatcherFixture(oracle *stubOracle) (*Matcher, *storage.MemoryMatchStore) {
	marks := storage.NewMemoryMarkStore([]domain.Mark{{ID: "mark-1", Name: "jane#doe"}})
	matchStore := storage.NewMemoryMatchStore(marks, 14)
	matcher := NewMatcher(oracle, marks, matchStore, 0.5,
		resilience.Policy{MaxAttempts: 1}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return matcher, matchStore
}

func TestMatchItemBelowThresholdCreatesNothing(t *testing.T) {
	matcher, store := newMatcherFixture(&stubOracle{candidates: []domain.Candidate{
		{MarkID: "mark-1", Similarity: 0.42},
	}})

	created, err := matcher.MatchItem(context.Background(), domain.ScoredItem{
		Item: domain.Item{ID: "item-1", Title: "headline"},
	})
	require.NoError(t, err)
	assert.Zero(t, created)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}

func TestMatchItemPersistsAboveThreshold(t *testing.T) {
	matcher, store := newMatcherFixture(&stubOracle{candidates: []domain.Candidate{
		{MarkID: "mark-1", Similarity: 0.91},
	}})

	item := domain.ScoredItem{Item: domain.Item{
		ID:    "item-1",
		Title: "headline",
		Link:  "https://example.org/item-1",
	}}
	created, err := matcher.MatchItem(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	matches, err := store.Query(context.Background(), domain.MatchFilter{})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "item-1", matches[0].ItemID)
	assert.Equal(t, "https://example.org/item-1", matches[0].ItemLink)
	assert.Equal(t, "mark-1", matches[0].MarkID)
	assert.Equal(t, 0.91, matches[0].Score)
	assert.False(t, matches[0].Actioned)
}

func TestMatchItemSkipsUnknownMark(t *testing.T) {
	matcher, store := newMatcherFixture(&stubOracle{candidates: []domain.Candidate{
		{MarkID: "ghost", Similarity: 0.95},
		{MarkID: "mark-1", Similarity: 0.8},
	}})

	created, err := matcher.MatchItem(context.Background(), domain.ScoredItem{
		Item: domain.Item{ID: "item-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	matches, err := store.Query(context.Background(), domain.MatchFilter{})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "mark-1", matches[0].MarkID)
}

func TestMatchItemSurfacesOracleFailure(t *testing.T) {
	matcher, store := newMatcherFixture(&stubOracle{err: errors.New("oracle unreachable")})

	_, err := matcher.MatchItem(context.Background(), domain.ScoredItem{
		Item: domain.Item{ID: "item-1"},
	})
	require.Error(t, err)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}
