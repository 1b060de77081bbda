package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"brandquiz-bot/internal/app"
	"brandquiz-bot/internal/config"
	"brandquiz-bot/internal/domain"
	"brandquiz-bot/internal/infra/memory"
	"brandquiz-bot/internal/infra/postgres"
	rediscache "brandquiz-bot/internal/infra/redis"
	"brandquiz-bot/internal/scheduler"
	"brandquiz-bot/internal/transport/telegram"
)

// userRegistry combines the user operations the transport and scheduler need.
// Implemented by postgres.UserStore and memory.Ledger.
type userRegistry interface {
	EnsureUser(ctx context.Context, telegramID int64) (domain.User, error)
	User(ctx context.Context, telegramID int64) (domain.User, error)
	SetLanguage(ctx context.Context, telegramID int64, lang domain.Language) error
	SetDailyEnabled(ctx context.Context, telegramID int64, enabled bool) error
	AllUserIDs(ctx context.Context) ([]int64, error)
	DailyOptIns(ctx context.Context) ([]int64, error)
}

type groupDirectory interface {
	BindGroup(ctx context.Context, chatID int64, title string) (domain.Group, error)
	SetWeeklyEnabled(ctx context.Context, chatID int64, enabled bool) error
	WeeklyGroups(ctx context.Context) ([]domain.Group, error)
}

// NewBotCmd builds the CLI subcommand to run the bot.
func NewBotCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context(), *configPath)
		},
	}
}

func runBot(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token not configured")
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		attemptLedger app.AttemptLedger
		ledgerReader  app.LedgerReader
		registry      userRegistry
		groups        groupDirectory
		content       contentWriter
		loader        memory.CatalogLoader
	)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}

		db := openBun(cfg.Postgres.URL)
		defer db.Close()

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		store := postgres.NewUserStore(db)
		pgLedger := postgres.NewLedger(db)
		attemptLedger = pgLedger
		ledgerReader = pgLedger
		registry = store
		groups = store
		content = postgres.NewContentStore(db)
		loader = postgres.NewCatalogLoader(pool)
	} else {
		// Demo mode without a database: everything lives in process memory.
		log.Warn("postgres url not configured, running with in-memory storage")
		static := memory.NewStaticCatalog()
		if _, err := seedContent(ctx, static); err != nil {
			return err
		}
		ledger := memory.NewLedger()
		attemptLedger = ledger
		ledgerReader = ledger
		registry = ledger
		groups = ledger
		content = static
		loader = static
	}

	catalogTTL := config.TTLDuration(cfg.Quiz.CatalogTTL, 10*time.Minute)
	var catalog app.Catalog
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		catalog = rediscache.NewCatalog(client, loader, catalogTTL)
	} else {
		catalog = memory.NewCatalog(loader, catalogTTL)
	}

	engine := app.NewEngine(memory.NewSessionStore(), catalog, attemptLedger, registry)

	tz := cfg.Location()
	stats := app.NewStatsService(ledgerReader, tz)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("create bot api: %w", err)
	}

	bot := telegram.New(api, log, telegram.Config{
		QuestionCount: cfg.Quiz.QuestionsPerSession,
		AdminIDs:      cfg.Telegram.AdminIDs,
	}, telegram.Deps{
		Engine:   engine,
		Topics:   catalog,
		Stats:    stats,
		Registry: registry,
		Groups:   groups,
		Content:  content,
	})

	dailyAt := cfg.Schedule.DailyAt
	if dailyAt == "" {
		dailyAt = "10:00"
	}
	weeklyAt := cfg.Schedule.WeeklyAt
	if weeklyAt == "" {
		weeklyAt = "10:00"
	}
	sched := scheduler.New(log, bot, registry, groups, stats, scheduler.Config{
		Timezone: tz,
		DailyAt:  dailyAt,
		WeeklyAt: weeklyAt,
	})
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	if err := bot.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	log.Info("bot stopped")
	return nil
}
