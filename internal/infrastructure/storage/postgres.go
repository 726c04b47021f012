package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"FeedMonitor/internal/domain"
	"FeedMonitor/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresMatchStore persists match relations in Postgres. Reads always
// filter on non-expiry; the sweep is eventual cleanup, not the
// enforcement mechanism.
type PostgresMatchStore struct {
	db         *sql.DB
	expiration time.Duration
	now        func() time.Time
}

var _ ports.MatchRepository = (*PostgresMatchStore)(nil)

// NewPostgresMatchStore wires a sql.DB with the configured TTL.
func NewPostgresMatchStore(db *sql.DB, expirationDays int) *PostgresMatchStore {
	return &PostgresMatchStore{
		db:         db,
		expiration: time.Duration(expirationDays) * 24 * time.Hour,
		now:        time.Now,
	}
}

// Create fills identity and expiry fields and inserts the relation.
func (s *PostgresMatchStore) Create(ctx context.Context, rel domain.MatchRelation) (domain.MatchRelation, error) {
	rel.ID = uuid.NewString()
	rel.CreatedAt = s.now().UTC()
	rel.ExpiresAt = rel.CreatedAt.Add(s.expiration)
	rel.Actioned = false

	query, args, err := psql.Insert("match_relations").
		Columns("id", "item_id", "item_title", "item_link", "mark_id", "user_id",
			"score", "actioned", "created_at", "expires_at").
		Values(rel.ID, rel.ItemID, rel.ItemTitle, rel.ItemLink, rel.MarkID, nullString(rel.UserID),
			rel.Score, rel.Actioned, rel.CreatedAt, rel.ExpiresAt).
		ToSql()
	if err != nil {
		return domain.MatchRelation{}, fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return domain.MatchRelation{}, fmt.Errorf("insert match relation: %w", err)
	}

	return rel, nil
}

// Query returns non-expired relations matching the filter, joined with
// their mark, ordered by descending score.
func (s *PostgresMatchStore) Query(ctx context.Context, filter domain.MatchFilter) ([]domain.Match, error) {
	builder := psql.Select(
		"r.id", "r.item_id", "r.item_title", "r.item_link", "r.mark_id",
		"COALESCE(r.user_id, '')", "r.score", "r.actioned", "r.created_at", "r.expires_at",
		"COALESCE(m.name, '')", "COALESCE(m.email, '')", "COALESCE(m.linkedin, '')").
		From("match_relations r").
		LeftJoin("marks m ON m.id = r.mark_id").
		Where(sq.Gt{"r.expires_at": s.now().UTC()}).
		OrderBy("r.score DESC")

	if filter.MinScore > 0 {
		builder = builder.Where(sq.GtOrEq{"r.score": filter.MinScore})
	}
	if filter.UserID != "" {
		builder = builder.Where(sq.Eq{"r.user_id": filter.UserID})
	}
	if filter.MarkID != "" {
		builder = builder.Where(sq.Eq{"r.mark_id": filter.MarkID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var match domain.Match
		if err := rows.Scan(
			&match.ID, &match.ItemID, &match.ItemTitle, &match.ItemLink, &match.MarkID,
			&match.UserID, &match.Score, &match.Actioned, &match.CreatedAt, &match.ExpiresAt,
			&match.Mark.Name, &match.Mark.Email, &match.Mark.LinkedIn); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		match.Mark.ID = match.MarkID
		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return matches, nil
}

// MarkActioned flags a relation as acted upon.
func (s *PostgresMatchStore) MarkActioned(ctx context.Context, id string) (domain.MatchRelation, error) {
	query, args, err := psql.Update("match_relations").
		Set("actioned", true).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, item_id, item_title, item_link, mark_id, COALESCE(user_id, ''), score, actioned, created_at, expires_at").
		ToSql()
	if err != nil {
		return domain.MatchRelation{}, fmt.Errorf("build update: %w", err)
	}

	var rel domain.MatchRelation
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&rel.ID, &rel.ItemID, &rel.ItemTitle, &rel.ItemLink, &rel.MarkID,
		&rel.UserID, &rel.Score, &rel.Actioned, &rel.CreatedAt, &rel.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MatchRelation{}, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.MatchRelation{}, fmt.Errorf("action match: %w", err)
	}

	return rel, nil
}

// SweepExpired deletes relations past their TTL and reports the count.
func (s *PostgresMatchStore) SweepExpired(ctx context.Context) (int, error) {
	query, args, err := psql.Delete("match_relations").
		Where(sq.LtOrEq{"expires_at": s.now().UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("sweep expired: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return int(removed), nil
}

// Stats counts total/active/actioned/expired relations as of now.
func (s *PostgresMatchStore) Stats(ctx context.Context) (domain.MatchStats, error) {
	now := s.now().UTC()
	query, args, err := psql.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE expires_at > ?)",
		"COUNT(*) FILTER (WHERE actioned)",
		"COUNT(*) FILTER (WHERE expires_at <= ?)").
		From("match_relations").
		ToSql()
	if err != nil {
		return domain.MatchStats{}, fmt.Errorf("build stats: %w", err)
	}
	args = append(args, now, now)

	var stats domain.MatchStats
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&stats.Total, &stats.Active, &stats.Actioned, &stats.Expired)
	if err != nil {
		return domain.MatchStats{}, fmt.Errorf("query stats: %w", err)
	}

	return stats, nil
}

// PostgresMarkStore reads contact records owned by the external CRUD
// collaborator. The pipeline never writes this table.
type PostgresMarkStore struct {
	db *sql.DB
}

var _ ports.MarkRepository = (*PostgresMarkStore)(nil)

// NewPostgresMarkStore wires a sql.DB.
func NewPostgresMarkStore(db *sql.DB) *PostgresMarkStore {
	return &PostgresMarkStore{db: db}
}

// Find looks up one mark by id.
func (s *PostgresMarkStore) Find(ctx context.Context, id string) (domain.Mark, error) {
	query, args, err := psql.Select("id", "COALESCE(name, '')", "COALESCE(email, '')", "COALESCE(linkedin, '')").
		From("marks").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Mark{}, fmt.Errorf("build query: %w", err)
	}

	var mark domain.Mark
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&mark.ID, &mark.Name, &mark.Email, &mark.LinkedIn)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Mark{}, fmt.Errorf("mark %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Mark{}, fmt.Errorf("find mark: %w", err)
	}

	return mark, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
