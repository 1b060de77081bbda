package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"brandquiz-bot/internal/domain"
)

type attemptRow struct {
	bun.BaseModel `bun:"table:attempts"`

	ID         int64      `bun:"id,pk,autoincrement"`
	UserID     int64      `bun:"user_id"`
	TopicID    int64      `bun:"topic_id"`
	StartedAt  time.Time  `bun:"started_at"`
	FinishedAt *time.Time `bun:"finished_at"`
	Total      int        `bun:"total"`
	Score      int        `bun:"score"`
}

type answerRow struct {
	bun.BaseModel `bun:"table:answers"`

	ID         int64     `bun:"id,pk,autoincrement"`
	AttemptID  int64     `bun:"attempt_id"`
	QuestionID int64     `bun:"question_id"`
	ChoiceID   int64     `bun:"choice_id"`
	Correct    bool      `bun:"is_correct"`
	AnsweredAt time.Time `bun:"answered_at"`
}

// Ledger is the durable attempt/answer log backed by Postgres. It implements
// app.AttemptLedger and app.LedgerReader.
type Ledger struct {
	db *bun.DB
}

func NewLedger(db *bun.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) CreateAttempt(ctx context.Context, userID, topicID int64, startedAt time.Time, total int) (int64, error) {
	row := attemptRow{
		UserID:    userID,
		TopicID:   topicID,
		StartedAt: startedAt,
		Total:     total,
	}
	if _, err := l.db.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		return 0, fmt.Errorf("create attempt: %w", err)
	}
	return row.ID, nil
}

func (l *Ledger) AppendAnswer(ctx context.Context, a domain.Answer) error {
	row := answerRow{
		AttemptID:  a.AttemptID,
		QuestionID: a.QuestionID,
		ChoiceID:   a.ChoiceID,
		Correct:    a.Correct,
		AnsweredAt: a.AnsweredAt,
	}
	if _, err := l.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("append answer: %w", err)
	}
	return nil
}

// FinalizeAttempt commits the completion timestamp and final score, and
// credits the score to the user's cumulative points, in one transaction.
func (l *Ledger) FinalizeAttempt(ctx context.Context, attemptID, userID int64, finishedAt time.Time, score int) error {
	return l.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*attemptRow)(nil)).
			Set("finished_at = ?", finishedAt).
			Set("score = ?", score).
			Where("id = ?", attemptID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("finalize attempt: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return domain.ErrAttemptNotFound
		}

		if _, err := tx.NewUpdate().
			Model((*userRow)(nil)).
			Set("points = points + ?", score).
			Where("id = ?", userID).
			Exec(ctx); err != nil {
			return fmt.Errorf("credit points: %w", err)
		}
		return nil
	})
}

// WeeklyTotals sums attempt scores started at or after since, grouped by the
// owning user. In-progress attempts carry a zero score and still count. Ties
// break by ascending Telegram id.
func (l *Ledger) WeeklyTotals(ctx context.Context, since time.Time, limit int) ([]domain.LeaderboardRow, error) {
	var rows []domain.LeaderboardRow
	err := l.db.NewRaw(
		`SELECT u.tg_id AS telegram_id, COALESCE(SUM(a.score), 0) AS points
		 FROM attempts a
		 JOIN users u ON u.id = a.user_id
		 WHERE a.started_at >= ?
		 GROUP BY u.tg_id
		 ORDER BY points DESC, u.tg_id ASC
		 LIMIT ?`, since, limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("weekly totals: %w", err)
	}
	return rows, nil
}

func (l *Ledger) LifetimeStats(ctx context.Context, telegramID int64) (domain.LifetimeStats, error) {
	var stats domain.LifetimeStats
	err := l.db.NewRaw(
		`SELECT COUNT(a.id) AS attempts, COALESCE(SUM(a.score), 0) AS points
		 FROM attempts a
		 JOIN users u ON u.id = a.user_id
		 WHERE u.tg_id = ?`, telegramID).
		Scan(ctx, &stats)
	if err != nil {
		return domain.LifetimeStats{}, fmt.Errorf("lifetime stats: %w", err)
	}
	return stats, nil
}
