package scoring

import (
	"sort"

	"FeedMonitor/internal/domain"
)

// PartitionResult splits one feed's scored items by the relevance
// threshold. Forwarded is the capped, highest-scoring slice of Accepted
// that proceeds to embedding; the rest of Accepted is archived only.
type PartitionResult struct {
	Accepted  []domain.ScoredItem
	Rejected  []domain.ScoredItem
	Forwarded []domain.ScoredItem
}

// Partition classifies items against the threshold (boundary counts as
// accepted) and selects up to maxPerFeed forwarded items by descending
// score, ties broken by original feed order.
func Partition(items []domain.ScoredItem, threshold float64, maxPerFeed int) PartitionResult {
	var res PartitionResult
	for _, item := range items {
		if item.RelevanceScore >= threshold {
			res.Accepted = append(res.Accepted, item)
		} else {
			res.Rejected = append(res.Rejected, item)
		}
	}

	ranked := make([]domain.ScoredItem, len(res.Accepted))
	copy(ranked, res.Accepted)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RelevanceScore > ranked[j].RelevanceScore
	})

	if maxPerFeed < 0 {
		maxPerFeed = 0
	}
	if len(ranked) > maxPerFeed {
		ranked = ranked[:maxPerFeed]
	}
	res.Forwarded = ranked

	return res
}
