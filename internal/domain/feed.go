package domain

import "time"

// FeedConfig identifies one external syndicated feed to monitor.
// Keywords extend the global keyword set for this feed only.
type FeedConfig struct {
	URL      string   `yaml:"url" json:"url"`
	Name     string   `yaml:"name" json:"name"`
	Category string   `yaml:"category" json:"category"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Item is a single parsed feed entry.
type Item struct {
	ID        string
	Title     string
	Link      string
	Summary   string
	Content   string
	Published time.Time
}

// ScoredItem enriches an Item with its relevance score and the
// keyword evidence that produced it.
type ScoredItem struct {
	Item            Item
	RelevanceScore  float64
	MatchedKeywords []string
}
