package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"brandquiz-bot/internal/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	ID           int64  `bun:"id,pk,autoincrement"`
	TelegramID   int64  `bun:"tg_id"`
	Lang         string `bun:"lang"`
	DailyEnabled bool   `bun:"daily_enabled"`
	Points       int    `bun:"points"`
}

type groupRow struct {
	bun.BaseModel `bun:"table:groups"`

	ID            int64  `bun:"id,pk,autoincrement"`
	ChatID        int64  `bun:"chat_id"`
	Title         string `bun:"title"`
	WeeklyEnabled bool   `bun:"weekly_enabled"`
}

// UserStore is the Postgres user registry and group directory. It implements
// app.UserRegistry plus the profile and group operations of the transport and
// scheduler.
type UserStore struct {
	db *bun.DB
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db}
}

// EnsureUser creates the profile on first contact. Concurrent first contacts
// race on the tg_id unique index; the losing insert is a no-op and the
// follow-up select returns the winner's row.
func (s *UserStore) EnsureUser(ctx context.Context, telegramID int64) (domain.User, error) {
	row := userRow{
		TelegramID: telegramID,
		Lang:       string(domain.DefaultLanguage),
	}
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (tg_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("ensure user: %w", err)
	}
	return s.User(ctx, telegramID)
}

func (s *UserStore) User(ctx context.Context, telegramID int64) (domain.User, error) {
	var row userRow
	err := s.db.NewSelect().
		Model(&row).
		Where("tg_id = ?", telegramID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return domain.User{
		ID:           row.ID,
		TelegramID:   row.TelegramID,
		Lang:         domain.Language(row.Lang),
		DailyEnabled: row.DailyEnabled,
		Points:       row.Points,
	}, nil
}

func (s *UserStore) SetLanguage(ctx context.Context, telegramID int64, lang domain.Language) error {
	res, err := s.db.NewUpdate().
		Model((*userRow)(nil)).
		Set("lang = ?", string(lang)).
		Where("tg_id = ?", telegramID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) SetDailyEnabled(ctx context.Context, telegramID int64, enabled bool) error {
	res, err := s.db.NewUpdate().
		Model((*userRow)(nil)).
		Set("daily_enabled = ?", enabled).
		Where("tg_id = ?", telegramID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set daily: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// DailyOptIns lists Telegram ids of users with the daily nudge enabled.
func (s *UserStore) DailyOptIns(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.NewSelect().
		Model((*userRow)(nil)).
		Column("tg_id").
		Where("daily_enabled").
		Order("id").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("daily opt-ins: %w", err)
	}
	return ids, nil
}

// AllUserIDs lists every known Telegram id, for broadcasts.
func (s *UserStore) AllUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.NewSelect().
		Model((*userRow)(nil)).
		Column("tg_id").
		Order("id").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("all user ids: %w", err)
	}
	return ids, nil
}

// BindGroup registers the chat for weekly leaderboard auto-posting, updating
// the stored title on rebind.
func (s *UserStore) BindGroup(ctx context.Context, chatID int64, title string) (domain.Group, error) {
	row := groupRow{
		ChatID:        chatID,
		Title:         title,
		WeeklyEnabled: true,
	}
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (chat_id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Returning("id, weekly_enabled").
		Exec(ctx)
	if err != nil {
		return domain.Group{}, fmt.Errorf("bind group: %w", err)
	}
	return domain.Group{
		ID:            row.ID,
		ChatID:        chatID,
		Title:         title,
		WeeklyEnabled: row.WeeklyEnabled,
	}, nil
}

func (s *UserStore) SetWeeklyEnabled(ctx context.Context, chatID int64, enabled bool) error {
	res, err := s.db.NewUpdate().
		Model((*groupRow)(nil)).
		Set("weekly_enabled = ?", enabled).
		Where("chat_id = ?", chatID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set weekly: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

// WeeklyGroups lists groups with weekly posting enabled.
func (s *UserStore) WeeklyGroups(ctx context.Context) ([]domain.Group, error) {
	var rows []groupRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("weekly_enabled").
		Order("id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("weekly groups: %w", err)
	}
	groups := make([]domain.Group, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, domain.Group{
			ID:            r.ID,
			ChatID:        r.ChatID,
			Title:         r.Title,
			WeeklyEnabled: r.WeeklyEnabled,
		})
	}
	return groups, nil
}
