package app

import (
	"context"
	"time"

	"brandquiz-bot/internal/domain"
)

// DefaultLeaderboardLimit caps weekly leaderboard output.
const DefaultLeaderboardLimit = 10

// LedgerReader provides the aggregation queries over the attempt ledger.
// Implementations must filter by attempt start time, include attempts that
// are still in progress (their score is zero until finalized), and break
// point ties by ascending Telegram id.
type LedgerReader interface {
	WeeklyTotals(ctx context.Context, since time.Time, limit int) ([]domain.LeaderboardRow, error)
	LifetimeStats(ctx context.Context, telegramID int64) (domain.LifetimeStats, error)
}

// StatsService derives windowed leaderboards and lifetime stats from the
// attempt ledger. It is stateless, performs repeatable reads only, and is
// safe to run concurrently with live sessions.
type StatsService struct {
	ledger LedgerReader
	tz     *time.Location
	clock  func() time.Time
}

func NewStatsService(ledger LedgerReader, tz *time.Location) *StatsService {
	return NewStatsServiceWithClock(ledger, tz, time.Now)
}

// NewStatsServiceWithClock pins the clock for deterministic window tests.
func NewStatsServiceWithClock(ledger LedgerReader, tz *time.Location, clock func() time.Time) *StatsService {
	if tz == nil {
		tz = time.UTC
	}
	return &StatsService{ledger: ledger, tz: tz, clock: clock}
}

// WeeklyLeaderboard ranks users by points earned on attempts started since
// Monday 00:00 in the service timezone. An empty window yields an empty
// slice, not an error.
func (s *StatsService) WeeklyLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardRow, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	since := WeekStart(s.clock().In(s.tz))
	rows, err := s.ledger.WeeklyTotals(ctx, since, limit)
	if err != nil {
		return nil, domain.NewStorageError("weekly totals", err)
	}
	return rows, nil
}

// Lifetime returns the user's total attempt count and accumulated score
// across all attempts. Pure read, no side effects.
func (s *StatsService) Lifetime(ctx context.Context, telegramID int64) (domain.LifetimeStats, error) {
	stats, err := s.ledger.LifetimeStats(ctx, telegramID)
	if err != nil {
		return domain.LifetimeStats{}, domain.NewStorageError("lifetime stats", err)
	}
	return stats, nil
}

// WeekStart returns Monday 00:00 of the week containing t, in t's location.
func WeekStart(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -daysSinceMonday)
}
