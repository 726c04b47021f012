package scoring

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"FeedMonitor/internal/domain"
)

// Keyword hit weights. A keyword appearing in the title counts double
// what a body-only hit does.
const (
	titleWeight = 2.0
	bodyWeight  = 1.0
	scoreDamp   = 3.0
)

// Scorer computes keyword relevance for feed items. Scoring is
// deterministic and strictly monotonic in the number of distinct
// keyword matches.
type Scorer struct {
	global []string
}

// NewScorer captures the global keyword taxonomy.
func NewScorer(global []string) *Scorer {
	return &Scorer{global: global}
}

// Score evaluates one item against the global keywords plus the
// feed-specific additions. Matched keywords are reported in stable
// input order (global first, then feed extras).
func (s *Scorer) Score(item domain.Item, feedKeywords []string) domain.ScoredItem {
	title := strings.ToLower(item.Title)
	body := strings.ToLower(StripHTML(item.Summary) + " " + StripHTML(item.Content))

	var (
		weight  float64
		matched []string
		seen    = map[string]struct{}{}
	)

	for _, kw := range append(append([]string{}, s.global...), feedKeywords...) {
		needle := strings.ToLower(strings.TrimSpace(kw))
		if needle == "" {
			continue
		}
		if _, dup := seen[needle]; dup {
			continue
		}
		seen[needle] = struct{}{}

		switch {
		case strings.Contains(title, needle):
			weight += titleWeight
			matched = append(matched, kw)
		case strings.Contains(body, needle):
			weight += bodyWeight
			matched = append(matched, kw)
		}
	}

	return domain.ScoredItem{
		Item:            item,
		RelevanceScore:  normalize(weight),
		MatchedKeywords: matched,
	}
}

// ScoreAll scores a batch preserving input order.
func (s *Scorer) ScoreAll(items []domain.Item, feedKeywords []string) []domain.ScoredItem {
	scored := make([]domain.ScoredItem, 0, len(items))
	for _, item := range items {
		scored = append(scored, s.Score(item, feedKeywords))
	}
	return scored
}

// normalize maps accumulated hit weight into [0,1). Each additional
// distinct match adds at least bodyWeight, so the score grows strictly
// with the number of matches.
func normalize(weight float64) float64 {
	if weight <= 0 {
		return 0
	}
	return weight / (weight + scoreDamp)
}

// StripHTML reduces markup-bearing feed content to its text. Content
// that does not parse as HTML is returned unchanged.
func StripHTML(raw string) string {
	if !strings.ContainsRune(raw, '<') {
		return raw
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	return strings.TrimSpace(doc.Text())
}
