package app_test

import (
	"context"
	"testing"
	"time"

	"brandquiz-bot/internal/app"
	"brandquiz-bot/internal/domain"
	"brandquiz-bot/internal/infra/memory"
)

func TestWeekStart(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		{
			// Wednesday afternoon
			in:   time.Date(2025, 3, 5, 15, 30, 0, 0, time.UTC),
			want: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			// Monday midnight is its own week start
			in:   time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			// Sunday belongs to the week started the previous Monday
			in:   time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC),
			want: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		if got := app.WeekStart(tc.in); !got.Equal(tc.want) {
			t.Fatalf("WeekStart(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestWeeklyLeaderboardWindowAndOrder(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()

	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC) // Wednesday
	lastWeek := now.AddDate(0, 0, -7)

	finishAttempt(t, ledger, 1, now, 10)
	finishAttempt(t, ledger, 2, now, 5)
	finishAttempt(t, ledger, 3, lastWeek, 8) // outside the window

	stats := app.NewStatsServiceWithClock(ledger, time.UTC, func() time.Time { return now })
	rows, err := stats.WeeklyLeaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("weekly leaderboard: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(rows), rows)
	}
	if rows[0].TelegramID != 1 || rows[0].Points != 10 {
		t.Fatalf("unexpected leader %+v", rows[0])
	}
	if rows[1].TelegramID != 2 || rows[1].Points != 5 {
		t.Fatalf("unexpected runner-up %+v", rows[1])
	}
}

func TestWeeklyLeaderboardSumsAttemptsPerUser(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()

	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	finishAttempt(t, ledger, 1, now, 7)
	finishAttempt(t, ledger, 1, now.Add(time.Hour), 3)
	finishAttempt(t, ledger, 2, now, 5)
	finishAttempt(t, ledger, 3, now, 0)

	stats := app.NewStatsServiceWithClock(ledger, time.UTC, func() time.Time { return now })
	rows, err := stats.WeeklyLeaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("weekly leaderboard: %v", err)
	}
	want := []domain.LeaderboardRow{
		{TelegramID: 1, Points: 10},
		{TelegramID: 2, Points: 5},
		{TelegramID: 3, Points: 0},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d: %+v", len(want), len(rows), rows)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("row %d: expected %+v, got %+v", i, want[i], rows[i])
		}
	}
}

func TestWeeklyLeaderboardTieBreak(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()

	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	finishAttempt(t, ledger, 20, now, 7)
	finishAttempt(t, ledger, 10, now, 7)

	stats := app.NewStatsServiceWithClock(ledger, time.UTC, func() time.Time { return now })
	rows, err := stats.WeeklyLeaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("weekly leaderboard: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].TelegramID != 10 || rows[1].TelegramID != 20 {
		t.Fatalf("expected tie broken by ascending id, got %+v", rows)
	}
}

func TestWeeklyLeaderboardIncludesUnfinishedAttempts(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()

	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	user, _ := ledger.EnsureUser(ctx, 42)
	if _, err := ledger.CreateAttempt(ctx, user.ID, domain.MixedTopicID, now, 10); err != nil {
		t.Fatalf("create attempt: %v", err)
	}

	stats := app.NewStatsServiceWithClock(ledger, time.UTC, func() time.Time { return now })
	rows, err := stats.WeeklyLeaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("weekly leaderboard: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected the open attempt's user listed, got %+v", rows)
	}
	if rows[0].TelegramID != 42 || rows[0].Points != 0 {
		t.Fatalf("expected zero points for open attempt, got %+v", rows[0])
	}
}

func TestWeeklyLeaderboardEmptyWindow(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()

	stats := app.NewStatsService(ledger, time.UTC)
	rows, err := stats.WeeklyLeaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("weekly leaderboard: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v", rows)
	}
}

func TestLifetimeStats(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()

	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	finishAttempt(t, ledger, 7, now, 4)
	finishAttempt(t, ledger, 7, now.AddDate(0, 0, -30), 6)

	stats := app.NewStatsService(ledger, time.UTC)

	// Lifetime ignores the weekly window and is a pure read.
	for i := 0; i < 2; i++ {
		got, err := stats.Lifetime(ctx, 7)
		if err != nil {
			t.Fatalf("lifetime: %v", err)
		}
		if got.Attempts != 2 || got.Points != 10 {
			t.Fatalf("expected 2 attempts / 10 points, got %+v", got)
		}
	}

	unknown, err := stats.Lifetime(ctx, 999)
	if err != nil {
		t.Fatalf("lifetime unknown: %v", err)
	}
	if unknown.Attempts != 0 || unknown.Points != 0 {
		t.Fatalf("expected zero stats for unknown user, got %+v", unknown)
	}
}

// finishAttempt records one finalized attempt for the user at the given start time.
func finishAttempt(t *testing.T, ledger *memory.Ledger, telegramID int64, startedAt time.Time, score int) {
	t.Helper()
	ctx := context.Background()

	user, err := ledger.EnsureUser(ctx, telegramID)
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	attemptID, err := ledger.CreateAttempt(ctx, user.ID, domain.MixedTopicID, startedAt, 10)
	if err != nil {
		t.Fatalf("create attempt: %v", err)
	}
	if err := ledger.FinalizeAttempt(ctx, attemptID, user.ID, startedAt.Add(2*time.Minute), score); err != nil {
		t.Fatalf("finalize attempt: %v", err)
	}
}
