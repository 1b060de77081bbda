// Package scheduler runs the daily quiz nudge and the weekly leaderboard
// post on cron-like schedules.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"brandquiz-bot/internal/domain"
	"brandquiz-bot/internal/i18n"
)

// Notifier delivers messages to chats.
type Notifier interface {
	SendText(chatID int64, text string) error
	DisplayName(telegramID int64) string
}

// Registry lists users who opted into the daily nudge, with their language.
type Registry interface {
	DailyOptIns(ctx context.Context) ([]int64, error)
	User(ctx context.Context, telegramID int64) (domain.User, error)
}

// Groups lists chats bound for the weekly leaderboard post.
type Groups interface {
	WeeklyGroups(ctx context.Context) ([]domain.Group, error)
}

// Stats produces the current weekly leaderboard.
type Stats interface {
	WeeklyLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardRow, error)
}

// Config holds the posting schedule. Times are "HH:MM" in the given location.
type Config struct {
	Timezone *time.Location
	DailyAt  string
	WeeklyAt string
}

// Scheduler owns the gocron instance and its two jobs.
type Scheduler struct {
	cron     *gocron.Scheduler
	log      *logrus.Logger
	notifier Notifier
	registry Registry
	groups   Groups
	stats    Stats
	cfg      Config
}

func New(log *logrus.Logger, notifier Notifier, registry Registry, groups Groups, stats Stats, cfg Config) *Scheduler {
	if cfg.Timezone == nil {
		cfg.Timezone = time.UTC
	}
	return &Scheduler{
		cron:     gocron.NewScheduler(cfg.Timezone),
		log:      log,
		notifier: notifier,
		registry: registry,
		groups:   groups,
		stats:    stats,
		cfg:      cfg,
	}
}

// Start registers the jobs and runs the scheduler in the background.
func (s *Scheduler) Start() error {
	if _, err := s.cron.Every(1).Day().At(s.cfg.DailyAt).Do(s.sendDailyNudge); err != nil {
		return err
	}
	if _, err := s.cron.Every(1).Monday().At(s.cfg.WeeklyAt).Do(s.postWeeklyLeaderboard); err != nil {
		return err
	}
	s.cron.StartAsync()
	s.log.WithFields(logrus.Fields{
		"daily_at":  s.cfg.DailyAt,
		"weekly_at": s.cfg.WeeklyAt,
	}).Info("scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) sendDailyNudge() {
	ctx := context.Background()
	ids, err := s.registry.DailyOptIns(ctx)
	if err != nil {
		s.log.WithError(err).Error("daily opt-ins failed")
		return
	}
	sent := 0
	for _, id := range ids {
		lang := domain.DefaultLanguage
		if user, err := s.registry.User(ctx, id); err == nil {
			lang = user.Lang
		}
		if err := s.notifier.SendText(id, i18n.Text(i18n.DailyNudge, lang)); err != nil {
			s.log.WithError(err).WithField("tg_id", id).Warn("daily nudge failed")
			continue
		}
		sent++
	}
	s.log.WithField("sent", sent).Info("daily nudge done")
}

func (s *Scheduler) postWeeklyLeaderboard() {
	ctx := context.Background()
	groups, err := s.groups.WeeklyGroups(ctx)
	if err != nil {
		s.log.WithError(err).Error("weekly groups failed")
		return
	}
	if len(groups) == 0 {
		return
	}
	rows, err := s.stats.WeeklyLeaderboard(ctx, 0)
	if err != nil {
		s.log.WithError(err).Error("weekly leaderboard failed")
		return
	}
	text := renderWeeklyPost(rows, s.notifier.DisplayName)
	for _, g := range groups {
		if err := s.notifier.SendText(g.ChatID, text); err != nil {
			s.log.WithError(err).WithField("chat_id", g.ChatID).Warn("weekly post failed")
		}
	}
}
