package domain

import "time"

// TrainingSample is the archived snapshot of one scored item. The
// accepted/rejected label is the corpus directory it is written to,
// not a field.
type TrainingSample struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Link            string    `json:"link"`
	Text            string    `json:"text"`
	Score           float64   `json:"score"`
	MatchedKeywords []string  `json:"matchedKeywords"`
	ArchivedAt      time.Time `json:"archivedAt"`
}

// FeedReport is the per-feed slice of a cycle report.
type FeedReport struct {
	Name           string `json:"name"`
	URL            string `json:"url"`
	Err            string `json:"error,omitempty"`
	ItemsFound     int    `json:"itemsFound"`
	ItemsSelected  int    `json:"itemsSelected"`
	PassSaved      int    `json:"passSaved"`
	FailSaved      int    `json:"failSaved"`
	MatchesCreated int    `json:"matchesCreated"`
}

// CycleReport summarizes one full processing cycle. Written once as an
// artifact, never updated.
type CycleReport struct {
	Timestamp      time.Time    `json:"timestamp"`
	FeedsProcessed int          `json:"feedsProcessed"`
	ItemsFound     int          `json:"itemsFound"`
	ItemsSelected  int          `json:"itemsSelected"`
	PassSaved      int          `json:"passSaved"`
	FailSaved      int          `json:"failSaved"`
	MatchesCreated int          `json:"matchesCreated"`
	FeedDetails    []FeedReport `json:"feedDetails"`
}
