package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"FeedMonitor/internal/domain"
	"FeedMonitor/internal/ports"
	"FeedMonitor/internal/scoring"
	"FeedMonitor/pkg/resilience"
)

// Matcher sends forwarded items to the embedding oracle and persists
// candidates above the match threshold. Each item is an independent
// unit of work; its failure never aborts the cycle.
type Matcher struct {
	oracle    ports.MatchOracle
	marks     ports.MarkRepository
	matches   ports.MatchRepository
	threshold float64
	policy    resilience.Policy
	logger    *slog.Logger
}

// NewMatcher wires the oracle and the persistence side.
func NewMatcher(oracle ports.MatchOracle, marks ports.MarkRepository, matches ports.MatchRepository,
	threshold float64, policy resilience.Policy, logger *slog.Logger) *Matcher {
	return &Matcher{
		oracle:    oracle,
		marks:     marks,
		matches:   matches,
		threshold: threshold,
		policy:    policy,
		logger:    logger,
	}
}

// MatchItem runs one forwarded item through the oracle and returns the
// number of relations created.
func (m *Matcher) MatchItem(ctx context.Context, item domain.ScoredItem) (int, error) {
	text := embeddingText(item.Item)

	candidates, err := m.oracle.Score(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("oracle score: %w", err)
	}

	created := 0
	for _, candidate := range candidates {
		if candidate.Similarity < m.threshold {
			continue
		}

		mark, err := resilience.Do(ctx, m.policy, func(ctx context.Context) (domain.Mark, error) {
			return m.marks.Find(ctx, candidate.MarkID)
		})
		if err != nil {
			m.logger.Warn("skipping candidate, mark lookup failed",
				"mark_id", candidate.MarkID, "item", item.Item.ID, "error", err)
			continue
		}

		rel := domain.MatchRelation{
			ItemID:    item.Item.ID,
			ItemTitle: item.Item.Title,
			ItemLink:  item.Item.Link,
			MarkID:    mark.ID,
			Score:     candidate.Similarity,
		}

		stored, err := resilience.Do(ctx, m.policy, func(ctx context.Context) (domain.MatchRelation, error) {
			return m.matches.Create(ctx, rel)
		})
		if err != nil {
			m.logger.Error("persist match failed",
				"mark_id", mark.ID, "item", item.Item.ID, "error", err)
			continue
		}

		m.logger.Info("match created",
			"match_id", stored.ID, "mark_id", mark.ID, "item", item.Item.ID,
			"similarity", candidate.Similarity)
		created++
	}

	return created, nil
}

// embeddingText assembles the plain text sent to the oracle.
func embeddingText(item domain.Item) string {
	parts := []string{item.Title}
	if body := scoring.StripHTML(item.Summary); body != "" {
		parts = append(parts, body)
	}
	if content := scoring.StripHTML(item.Content); content != "" {
		parts = append(parts, content)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
