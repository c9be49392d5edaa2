package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, s.Ping(context.Background()))
}

func TestOpen_File(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "portfolio.db"))
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, s.RecordVisit(context.Background(), "abc", "ua", "/", time.Now()))
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordVisit(ctx, "aaaa", "ua", "/", now.Add(-time.Hour)))
	require.NoError(t, s.RecordVisit(ctx, "aaaa", "ua", "/about", now.Add(-2*time.Hour)))
	require.NoError(t, s.RecordVisit(ctx, "bbbb", "ua", "/", now.Add(-3*24*time.Hour)))
	require.NoError(t, s.RecordVisit(ctx, "cccc", "ua", "/", now.Add(-30*24*time.Hour)))

	require.NoError(t, s.RecordContactOutcome(ctx, "delivered", now))
	require.NoError(t, s.RecordContactOutcome(ctx, "delivered", now))
	require.NoError(t, s.RecordContactOutcome(ctx, "fallback", now))

	stats, err := s.Stats(ctx, now)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalVisitors)
	assert.Equal(t, int64(3), stats.UniqueVisitors)
	assert.Equal(t, int64(2), stats.VisitorsToday)
	assert.Equal(t, int64(3), stats.VisitorsThisWeek)
	assert.Equal(t, int64(2), stats.ContactOutcomes["delivered"])
	assert.Equal(t, int64(1), stats.ContactOutcomes["fallback"])
	assert.Zero(t, stats.ContactOutcomes["invalid"])
	assert.Len(t, stats.RecentVisitors, 4)
}

func TestStats_Empty(t *testing.T) {
	stats, err := newTestStore(t).Stats(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalVisitors)
	assert.Empty(t, stats.ContactOutcomes)
	assert.NotNil(t, stats.RecentVisitors)
}

func TestRecentVisitors_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, path := range []string{"/a", "/b", "/c"} {
		require.NoError(t, s.RecordVisit(ctx, "hash", "ua", path, base.Add(time.Duration(i)*time.Minute)))
	}

	visitors, err := s.RecentVisitors(ctx, 2)
	require.NoError(t, err)
	require.Len(t, visitors, 2)
	assert.Equal(t, "/c", visitors[0].Path)
	assert.Equal(t, "/b", visitors[1].Path)
	assert.Equal(t, base.Add(2*time.Minute), visitors[0].Timestamp)
}

func TestPurgeVisitorsBefore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()

	require.NoError(t, s.RecordVisit(ctx, "old", "ua", "/", now.Add(-400*24*time.Hour)))
	require.NoError(t, s.RecordVisit(ctx, "new", "ua", "/", now))

	n, err := s.PurgeVisitorsBefore(ctx, now.Add(-365*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	visitors, err := s.RecentVisitors(ctx, 10)
	require.NoError(t, err)
	require.Len(t, visitors, 1)
	assert.Equal(t, "new", visitors[0].HashedIP)
}
