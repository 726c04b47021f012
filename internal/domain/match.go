package domain

import "time"

// Mark is a known contact record owned by the external record store.
// The pipeline only reads it.
type Mark struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	LinkedIn string `json:"linkedin"`
}

// MatchRelation links a feed item to a mark with a similarity score
// and a time-to-live. The item fields are snapshotted onto the relation
// so queries can return them without the item outliving the cycle.
type MatchRelation struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"itemId"`
	ItemTitle string    `json:"itemTitle"`
	ItemLink  string    `json:"itemLink"`
	MarkID    string    `json:"markId"`
	UserID    string    `json:"userId,omitempty"`
	Score     float64   `json:"score"`
	Actioned  bool      `json:"actioned"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Match is a query result row: the relation joined with its mark.
type Match struct {
	MatchRelation
	Mark Mark `json:"mark"`
}

// MatchFilter narrows a match query. Zero values mean "no filter".
type MatchFilter struct {
	MinScore float64
	UserID   string
	MarkID   string
}

// MatchStats summarizes the match store as of one instant.
type MatchStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Actioned int `json:"actioned"`
	Expired  int `json:"expired"`
}

// Candidate is one oracle result: a mark and its similarity to the
// submitted text.
type Candidate struct {
	MarkID     string  `json:"markId"`
	Similarity float64 `json:"similarity"`
}
