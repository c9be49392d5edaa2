// Package store keeps privacy-conscious visitor metrics and contact outcome
// counters in sqlite. Submission content is never persisted.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sqlx.DB
}

// Visitor is one tracked page view. The IP is hashed before it gets here.
type Visitor struct {
	ID        int64     `db:"id" json:"id"`
	HashedIP  string    `db:"hashed_ip" json:"hashed_ip"`
	UserAgent string    `db:"user_agent" json:"user_agent"`
	Path      string    `db:"path" json:"path"`
	CreatedAt int64     `db:"created_at" json:"-"`
	Timestamp time.Time `db:"-" json:"timestamp"`
}

type Stats struct {
	TotalVisitors    int64            `json:"total_visitors"`
	UniqueVisitors   int64            `json:"unique_visitors"`
	VisitorsToday    int64            `json:"visitors_today"`
	VisitorsThisWeek int64            `json:"visitors_this_week"`
	ContactOutcomes  map[string]int64 `json:"contact_outcomes"`
	RecentVisitors   []Visitor        `json:"recent_visitors"`
}

const schema = `
CREATE TABLE IF NOT EXISTS visitors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hashed_ip TEXT NOT NULL,
	user_agent TEXT NOT NULL DEFAULT '',
	path TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_visitors_created_at ON visitors(created_at);
CREATE TABLE IF NOT EXISTS contact_events (
	id TEXT PRIMARY KEY,
	outcome TEXT NOT NULL,
	created_at INTEGER NOT NULL
);`

// Open connects to the sqlite database at path. ":memory:" is supported and
// pinned to a single connection so every query sees the same database.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) RecordVisit(ctx context.Context, hashedIP, userAgent, path string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visitors (hashed_ip, user_agent, path, created_at) VALUES (?, ?, ?, ?)`,
		hashedIP, userAgent, path, at.Unix())
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// RecordContactOutcome counts one finished submission attempt.
func (s *Store) RecordContactOutcome(ctx context.Context, outcome string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_events (id, outcome, created_at) VALUES (?, ?, ?)`,
		uuid.NewString(), outcome, at.Unix())
	if err != nil {
		return fmt.Errorf("record contact outcome: %w", err)
	}
	return nil
}

// Stats summarizes traffic relative to now. "Today" starts at midnight UTC.
func (s *Store) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{ContactOutcomes: map[string]int64{}}

	if err := s.db.GetContext(ctx, &stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`); err != nil {
		return nil, fmt.Errorf("count visitors: %w", err)
	}
	if err := s.db.GetContext(ctx, &stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`); err != nil {
		return nil, fmt.Errorf("count unique visitors: %w", err)
	}

	utc := now.UTC()
	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	if err := s.db.GetContext(ctx, &stats.VisitorsToday,
		`SELECT COUNT(*) FROM visitors WHERE created_at >= ?`, midnight.Unix()); err != nil {
		return nil, fmt.Errorf("count visitors today: %w", err)
	}
	if err := s.db.GetContext(ctx, &stats.VisitorsThisWeek,
		`SELECT COUNT(*) FROM visitors WHERE created_at >= ?`, now.Add(-7*24*time.Hour).Unix()); err != nil {
		return nil, fmt.Errorf("count visitors this week: %w", err)
	}

	var outcomes []struct {
		Outcome string `db:"outcome"`
		Count   int64  `db:"count"`
	}
	if err := s.db.SelectContext(ctx, &outcomes,
		`SELECT outcome, COUNT(*) AS count FROM contact_events GROUP BY outcome`); err != nil {
		return nil, fmt.Errorf("count contact outcomes: %w", err)
	}
	for _, o := range outcomes {
		stats.ContactOutcomes[o.Outcome] = o.Count
	}

	recent, err := s.RecentVisitors(ctx, 50)
	if err != nil {
		return nil, err
	}
	stats.RecentVisitors = recent
	return stats, nil
}

// RecentVisitors returns up to limit visits, newest first.
func (s *Store) RecentVisitors(ctx context.Context, limit int) ([]Visitor, error) {
	visitors := []Visitor{}
	err := s.db.SelectContext(ctx, &visitors, `
		SELECT id, hashed_ip, user_agent, path, created_at
		FROM visitors
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent visitors: %w", err)
	}
	for i := range visitors {
		visitors[i].Timestamp = time.Unix(visitors[i].CreatedAt, 0).UTC()
	}
	return visitors, nil
}

// PurgeVisitorsBefore deletes visits older than cutoff and returns how many went.
func (s *Store) PurgeVisitorsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM visitors WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("purge visitors: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
