package feeds

import (
	"sync"

	"FeedMonitor/internal/domain"
)

// Registry keeps the in-memory feed list. Cycles read an immutable
// snapshot taken at cycle start, so an append racing a running cycle
// only affects the next cycle.
type Registry struct {
	mu    sync.RWMutex
	feeds []domain.FeedConfig
}

// NewRegistry seeds the registry from the startup configuration.
func NewRegistry(initial []domain.FeedConfig) *Registry {
	feeds := make([]domain.FeedConfig, len(initial))
	copy(feeds, initial)
	return &Registry{feeds: feeds}
}

// Add appends a feed to the in-memory list.
func (r *Registry) Add(feed domain.FeedConfig) domain.FeedConfig {
	if feed.Category == "" {
		feed.Category = "general"
	}
	if feed.Keywords == nil {
		feed.Keywords = []string{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.feeds = append(r.feeds, feed)
	return feed
}

// Snapshot returns a copy of the current feed list.
func (r *Registry) Snapshot() []domain.FeedConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.FeedConfig, len(r.feeds))
	copy(out, r.feeds)
	return out
}

// Len reports the current number of configured feeds.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.feeds)
}
