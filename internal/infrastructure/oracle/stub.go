package oracle

import (
	"context"
	"hash/fnv"

	"FeedMonitor/internal/domain"
	"FeedMonitor/internal/ports"
)

// Stub is the dev-mode oracle. It produces deterministic similarity
// scores derived from the text so local runs and tests behave the same
// without a running embedding service.
type Stub struct {
	markIDs []string
}

var _ ports.MatchOracle = (*Stub)(nil)

// NewStub seeds the stub with the mark ids it may return.
func NewStub(markIDs []string) *Stub {
	return &Stub{markIDs: markIDs}
}

// Score hashes the text against each known mark id. Similarities span
// [0,1) and repeat exactly for identical inputs.
func (s *Stub) Score(_ context.Context, text string) ([]domain.Candidate, error) {
	candidates := make([]domain.Candidate, 0, len(s.markIDs))
	for _, id := range s.markIDs {
		candidates = append(candidates, domain.Candidate{
			MarkID:     id,
			Similarity: pseudoSimilarity(text, id),
		})
	}
	return candidates, nil
}

func pseudoSimilarity(text, markID string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	_, _ = h.Write([]byte(markID))
	return float64(h.Sum32()%1000) / 1000
}
