package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"FeedMonitor/internal/domain"
	"FeedMonitor/internal/ports"
)

const userAgent = "FeedMonitor/1.0"

// Fetcher retrieves and parses one RSS/Atom feed per call. Failures
// surface to the caller; the pipeline isolates them per feed.
type Fetcher struct {
	client *http.Client
	parser *gofeed.Parser
}

var _ ports.FeedSource = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; the default carries a 20s timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Fetcher{client: client, parser: gofeed.NewParser()}
}

// Fetch downloads and parses the configured feed into items.
func (f *Fetcher) Fetch(ctx context.Context, cfg domain.FeedConfig) ([]domain.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed %s: %w", cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned %s", cfg.Name, resp.Status)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", cfg.Name, err)
	}

	items := make([]domain.Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		items = append(items, toItem(entry))
	}

	return items, nil
}

func toItem(entry *gofeed.Item) domain.Item {
	id := entry.GUID
	if id == "" {
		id = entry.Link
	}

	published := time.Time{}
	if entry.PublishedParsed != nil {
		published = entry.PublishedParsed.UTC()
	} else if entry.UpdatedParsed != nil {
		published = entry.UpdatedParsed.UTC()
	}

	return domain.Item{
		ID:        id,
		Title:     entry.Title,
		Link:      entry.Link,
		Summary:   entry.Description,
		Content:   entry.Content,
		Published: published,
	}
}
