package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"brandquiz-bot/internal/domain"
)

// Ledger is an in-memory attempt ledger and user registry, used for tests and
// the no-database demo mode. It implements app.AttemptLedger, app.LedgerReader
// and app.UserRegistry plus the profile and group operations the transport
// needs.
type Ledger struct {
	mu sync.RWMutex

	users    map[int64]*domain.User // keyed by internal id
	byTgID   map[int64]int64
	attempts map[int64]*domain.Attempt
	answers  map[int64][]domain.Answer // keyed by attempt id
	groups   map[int64]*domain.Group   // keyed by chat id

	nextUserID    int64
	nextAttemptID int64
	nextAnswerID  int64
	nextGroupID   int64
}

func NewLedger() *Ledger {
	return &Ledger{
		users:    make(map[int64]*domain.User),
		byTgID:   make(map[int64]int64),
		attempts: make(map[int64]*domain.Attempt),
		answers:  make(map[int64][]domain.Answer),
		groups:   make(map[int64]*domain.Group),
	}
}

func (l *Ledger) EnsureUser(_ context.Context, telegramID int64) (domain.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id, ok := l.byTgID[telegramID]; ok {
		return *l.users[id], nil
	}
	l.nextUserID++
	user := &domain.User{
		ID:         l.nextUserID,
		TelegramID: telegramID,
		Lang:       domain.DefaultLanguage,
	}
	l.users[user.ID] = user
	l.byTgID[telegramID] = user.ID
	return *user, nil
}

func (l *Ledger) SetLanguage(_ context.Context, telegramID int64, lang domain.Language) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.byTgID[telegramID]
	if !ok {
		return domain.ErrUserNotFound
	}
	l.users[id].Lang = lang
	return nil
}

func (l *Ledger) SetDailyEnabled(_ context.Context, telegramID int64, enabled bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.byTgID[telegramID]
	if !ok {
		return domain.ErrUserNotFound
	}
	l.users[id].DailyEnabled = enabled
	return nil
}

func (l *Ledger) User(_ context.Context, telegramID int64) (domain.User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.byTgID[telegramID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return *l.users[id], nil
}

// DailyOptIns lists Telegram ids of users with the daily nudge enabled.
func (l *Ledger) DailyOptIns(_ context.Context) ([]int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]int64, 0)
	for uid := int64(1); uid <= l.nextUserID; uid++ {
		if u, ok := l.users[uid]; ok && u.DailyEnabled {
			ids = append(ids, u.TelegramID)
		}
	}
	return ids, nil
}

// AllUserIDs lists every known Telegram id, for broadcasts.
func (l *Ledger) AllUserIDs(_ context.Context) ([]int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]int64, 0, len(l.users))
	for uid := int64(1); uid <= l.nextUserID; uid++ {
		if u, ok := l.users[uid]; ok {
			ids = append(ids, u.TelegramID)
		}
	}
	return ids, nil
}

func (l *Ledger) CreateAttempt(_ context.Context, userID, topicID int64, startedAt time.Time, total int) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextAttemptID++
	l.attempts[l.nextAttemptID] = &domain.Attempt{
		ID:        l.nextAttemptID,
		UserID:    userID,
		TopicID:   topicID,
		StartedAt: startedAt,
		Total:     total,
	}
	return l.nextAttemptID, nil
}

func (l *Ledger) AppendAnswer(_ context.Context, a domain.Answer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextAnswerID++
	a.ID = l.nextAnswerID
	l.answers[a.AttemptID] = append(l.answers[a.AttemptID], a)
	return nil
}

func (l *Ledger) FinalizeAttempt(_ context.Context, attemptID, userID int64, finishedAt time.Time, score int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	attempt, ok := l.attempts[attemptID]
	if !ok {
		return domain.ErrAttemptNotFound
	}
	t := finishedAt
	attempt.FinishedAt = &t
	attempt.Score = score
	if user, ok := l.users[userID]; ok {
		user.Points += score
	}
	return nil
}

func (l *Ledger) WeeklyTotals(_ context.Context, since time.Time, limit int) ([]domain.LeaderboardRow, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	totals := make(map[int64]int) // telegram id -> points
	for _, a := range l.attempts {
		if a.StartedAt.Before(since) {
			continue
		}
		user, ok := l.users[a.UserID]
		if !ok {
			continue
		}
		totals[user.TelegramID] += a.Score
	}
	rows := make([]domain.LeaderboardRow, 0, len(totals))
	for tgID, pts := range totals {
		rows = append(rows, domain.LeaderboardRow{TelegramID: tgID, Points: pts})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].TelegramID < rows[j].TelegramID
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (l *Ledger) LifetimeStats(_ context.Context, telegramID int64) (domain.LifetimeStats, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.byTgID[telegramID]
	if !ok {
		return domain.LifetimeStats{}, nil
	}
	stats := domain.LifetimeStats{}
	for _, a := range l.attempts {
		if a.UserID == id {
			stats.Attempts++
			stats.Points += a.Score
		}
	}
	return stats, nil
}

func (l *Ledger) BindGroup(_ context.Context, chatID int64, title string) (domain.Group, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if g, ok := l.groups[chatID]; ok {
		g.Title = title
		return *g, nil
	}
	l.nextGroupID++
	group := &domain.Group{ID: l.nextGroupID, ChatID: chatID, Title: title, WeeklyEnabled: true}
	l.groups[chatID] = group
	return *group, nil
}

func (l *Ledger) SetWeeklyEnabled(_ context.Context, chatID int64, enabled bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, ok := l.groups[chatID]
	if !ok {
		return domain.ErrGroupNotFound
	}
	g.WeeklyEnabled = enabled
	return nil
}

func (l *Ledger) WeeklyGroups(_ context.Context) ([]domain.Group, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	groups := make([]domain.Group, 0, len(l.groups))
	for _, g := range l.groups {
		if g.WeeklyEnabled {
			groups = append(groups, *g)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

// Attempt exposes a stored attempt for tests.
func (l *Ledger) Attempt(id int64) (domain.Attempt, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.attempts[id]
	if !ok {
		return domain.Attempt{}, false
	}
	return *a, true
}

// Answers exposes the answer events of an attempt for tests.
func (l *Ledger) Answers(attemptID int64) []domain.Answer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Answer, len(l.answers[attemptID]))
	copy(out, l.answers[attemptID])
	return out
}
