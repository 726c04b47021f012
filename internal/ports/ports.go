package ports

import (
	"context"
	"time"

	"FeedMonitor/internal/domain"
)

// FeedSource retrieves and parses one configured feed.
type FeedSource interface {
	Fetch(ctx context.Context, feed domain.FeedConfig) ([]domain.Item, error)
}

// MatchOracle scores text against the pool of known marks. The internal
// model is opaque; only the candidate list contract matters here.
type MatchOracle interface {
	Score(ctx context.Context, text string) ([]domain.Candidate, error)
}

// MarkRepository reads contact records owned by the external store.
type MarkRepository interface {
	Find(ctx context.Context, id string) (domain.Mark, error)
}

// MatchRepository persists time-bounded match relations.
type MatchRepository interface {
	Create(ctx context.Context, rel domain.MatchRelation) (domain.MatchRelation, error)
	Query(ctx context.Context, filter domain.MatchFilter) ([]domain.Match, error)
	MarkActioned(ctx context.Context, id string) (domain.MatchRelation, error)
	SweepExpired(ctx context.Context) (int, error)
	Stats(ctx context.Context) (domain.MatchStats, error)
}

// Archiver records every scored item as a labeled training sample and
// persists cycle reports. Both are best-effort telemetry.
type Archiver interface {
	SaveSample(item domain.ScoredItem, accepted bool) error
	SaveReport(report domain.CycleReport) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Schedule(spec string, job func(time.Time)) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
