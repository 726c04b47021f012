package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeedMonitor/internal/domain"
)

func scored(id string, score float64) domain.ScoredItem {
	return domain.ScoredItem{Item: domain.Item{ID: id}, RelevanceScore: score}
}

func ids(items []domain.ScoredItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Item.ID)
	}
	return out
}

func TestPartitionBoundaryIsAccepted(t *testing.T) {
	res := Partition([]domain.ScoredItem{scored("exact", 0.5)}, 0.5, 10)

	require.Len(t, res.Accepted, 1)
	assert.Empty(t, res.Rejected)
}

func TestPartitionCapsForwardedByDescendingScore(t *testing.T) {
	items := []domain.ScoredItem{
		scored("a", 0.9),
		scored("b", 0.2),
		scored("c", 0.6),
		scored("d", 0.7),
		scored("e", 0.1),
	}

	res := Partition(items, 0.5, 2)

	assert.Equal(t, []string{"a", "c", "d"}, ids(res.Accepted))
	assert.Equal(t, []string{"b", "e"}, ids(res.Rejected))
	assert.Equal(t, []string{"a", "d"}, ids(res.Forwarded))
}

func TestPartitionForwardedTiesKeepFeedOrder(t *testing.T) {
	items := []domain.ScoredItem{
		scored("first", 0.8),
		scored("second", 0.8),
		scored("third", 0.8),
	}

	res := Partition(items, 0.5, 2)
	assert.Equal(t, []string{"first", "second"}, ids(res.Forwarded))
}

func TestPartitionForwardedNeverExceedsAccepted(t *testing.T) {
	items := []domain.ScoredItem{scored("a", 0.9)}
	res := Partition(items, 0.5, 10)

	assert.Len(t, res.Forwarded, 1)
}

func TestPartitionEmptyInput(t *testing.T) {
	res := Partition(nil, 0.5, 5)

	assert.Empty(t, res.Accepted)
	assert.Empty(t, res.Rejected)
	assert.Empty(t, res.Forwarded)
}
