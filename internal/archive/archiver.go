package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"FeedMonitor/internal/domain"
	"FeedMonitor/internal/ports"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Writer persists training samples and cycle reports as one JSON file
// each. The corpus directory is the label: accepted items land in
// passDir, rejected ones in failDir.
type Writer struct {
	outputDir string
	passDir   string
	failDir   string
	now       func() time.Time
}

var _ ports.Archiver = (*Writer)(nil)

// NewWriter ensures the output directories exist.
func NewWriter(outputDir, passDir, failDir string) (*Writer, error) {
	for _, dir := range []string{outputDir, passDir, failDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir %s: %w", dir, err)
		}
	}

	return &Writer{
		outputDir: outputDir,
		passDir:   passDir,
		failDir:   failDir,
		now:       time.Now,
	}, nil
}

// SaveSample writes one labeled training sample. File names combine a
// millisecond timestamp with the sanitized item id to avoid collisions.
func (w *Writer) SaveSample(item domain.ScoredItem, accepted bool) error {
	dir := w.failDir
	if accepted {
		dir = w.passDir
	}

	now := w.now()
	sample := domain.TrainingSample{
		ID:              item.Item.ID,
		Title:           item.Item.Title,
		Link:            item.Item.Link,
		Text:            item.Item.Summary,
		Score:           item.RelevanceScore,
		MatchedKeywords: item.MatchedKeywords,
		ArchivedAt:      now,
	}

	name := fmt.Sprintf("%d_%s.json", now.UnixMilli(), SanitizeID(item.Item.ID))
	return writeJSON(filepath.Join(dir, name), sample)
}

// SaveReport writes the cycle summary to the output directory.
func (w *Writer) SaveReport(report domain.CycleReport) error {
	name := fmt.Sprintf("report_%d.json", w.now().UnixMilli())
	return writeJSON(filepath.Join(w.outputDir, name), report)
}

// SanitizeID replaces every non-alphanumeric rune so any item id is a
// safe file name component.
func SanitizeID(id string) string {
	return unsafeChars.ReplaceAllString(id, "_")
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
