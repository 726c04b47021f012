package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"FeedMonitor/internal/domain"
	"FeedMonitor/internal/ports"
)

// MemoryMarkStore is a seeded in-memory contact record lookup used in
// dev mode and tests.
type MemoryMarkStore struct {
	mu    sync.RWMutex
	marks map[string]domain.Mark
}

var _ ports.MarkRepository = (*MemoryMarkStore)(nil)

// NewMemoryMarkStore seeds the store with known marks.
func NewMemoryMarkStore(marks []domain.Mark) *MemoryMarkStore {
	byID := make(map[string]domain.Mark, len(marks))
	for _, m := range marks {
		byID[m.ID] = m
	}
	return &MemoryMarkStore{marks: byID}
}

// Find looks up one mark by id.
func (s *MemoryMarkStore) Find(_ context.Context, id string) (domain.Mark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mark, ok := s.marks[id]
	if !ok {
		return domain.Mark{}, fmt.Errorf("mark %s: %w", id, ErrNotFound)
	}
	return mark, nil
}

// IDs returns the seeded mark ids; the dev-mode oracle stub needs them.
func (s *MemoryMarkStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.marks))
	for id := range s.marks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MemoryMatchStore keeps match relations in memory with the same
// expiry semantics as the Postgres store.
type MemoryMatchStore struct {
	mu         sync.RWMutex
	relations  map[string]domain.MatchRelation
	marks      ports.MarkRepository
	expiration time.Duration
	now        func() time.Time
}

var _ ports.MatchRepository = (*MemoryMatchStore)(nil)

// NewMemoryMatchStore builds an empty store. marks may be nil; queries
// then return relations with empty mark data.
func NewMemoryMatchStore(marks ports.MarkRepository, expirationDays int) *MemoryMatchStore {
	return &MemoryMatchStore{
		relations:  map[string]domain.MatchRelation{},
		marks:      marks,
		expiration: time.Duration(expirationDays) * 24 * time.Hour,
		now:        time.Now,
	}
}

// SetNowFunc overrides the store clock; tests use it to control expiry.
func (s *MemoryMatchStore) SetNowFunc(now func() time.Time) {
	s.now = now
}

// Create fills identity and expiry fields and stores the relation.
func (s *MemoryMatchStore) Create(_ context.Context, rel domain.MatchRelation) (domain.MatchRelation, error) {
	rel.ID = uuid.NewString()
	rel.CreatedAt = s.now().UTC()
	rel.ExpiresAt = rel.CreatedAt.Add(s.expiration)
	rel.Actioned = false

	s.mu.Lock()
	defer s.mu.Unlock()
	s.relations[rel.ID] = rel
	return rel, nil
}

// Query filters non-expired relations and joins mark data.
func (s *MemoryMatchStore) Query(ctx context.Context, filter domain.MatchFilter) ([]domain.Match, error) {
	now := s.now().UTC()

	s.mu.RLock()
	var matches []domain.Match
	for _, rel := range s.relations {
		if !rel.ExpiresAt.After(now) {
			continue
		}
		if filter.MinScore > 0 && rel.Score < filter.MinScore {
			continue
		}
		if filter.UserID != "" && rel.UserID != filter.UserID {
			continue
		}
		if filter.MarkID != "" && rel.MarkID != filter.MarkID {
			continue
		}
		matches = append(matches, domain.Match{MatchRelation: rel})
	}
	s.mu.RUnlock()

	if s.marks != nil {
		for i := range matches {
			if mark, err := s.marks.Find(ctx, matches[i].MarkID); err == nil {
				matches[i].Mark = mark
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

// MarkActioned flags a relation as acted upon.
func (s *MemoryMatchStore) MarkActioned(_ context.Context, id string) (domain.MatchRelation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rel, ok := s.relations[id]
	if !ok {
		return domain.MatchRelation{}, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	rel.Actioned = true
	s.relations[id] = rel
	return rel, nil
}

// SweepExpired deletes relations past their TTL and reports the count.
func (s *MemoryMatchStore) SweepExpired(_ context.Context) (int, error) {
	now := s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, rel := range s.relations {
		if !rel.ExpiresAt.After(now) {
			delete(s.relations, id)
			removed++
		}
	}
	return removed, nil
}

// Stats counts total/active/actioned/expired relations as of now.
func (s *MemoryMatchStore) Stats(_ context.Context) (domain.MatchStats, error) {
	now := s.now().UTC()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats domain.MatchStats
	for _, rel := range s.relations {
		stats.Total++
		if rel.ExpiresAt.After(now) {
			stats.Active++
		} else {
			stats.Expired++
		}
		if rel.Actioned {
			stats.Actioned++
		}
	}
	return stats, nil
}
