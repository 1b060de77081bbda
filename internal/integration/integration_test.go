package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"brandquiz-bot/internal/app"
	"brandquiz-bot/internal/domain"
	"brandquiz-bot/internal/infra/memory"
	"brandquiz-bot/internal/infra/postgres"
	pgmigrations "brandquiz-bot/internal/infra/postgres/migrations"
	infraredis "brandquiz-bot/internal/infra/redis"
)

func TestQuizSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := openBun(t, ctx, pgURL)
	defer db.Close()

	topic := seedContent(t, ctx, db)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	users := postgres.NewUserStore(db)
	ledger := postgres.NewLedger(db)
	catalog := infraredis.NewCatalog(redisClient, postgres.NewCatalogLoader(pool), 5*time.Minute)
	engine := app.NewEngine(memory.NewSessionStore(), catalog, ledger, users)

	const telegramID int64 = 777

	card, err := engine.StartSession(ctx, telegramID, topic.ID, 3)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if card.Total != 3 {
		t.Fatalf("expected 3 questions, got %d", card.Total)
	}

	// Answer every question correctly.
	var summary *domain.SessionSummary
	for i := 0; i < 3; i++ {
		current, err := engine.CurrentQuestion(ctx, telegramID)
		if err != nil {
			t.Fatalf("current question: %v", err)
		}
		question, err := catalog.Question(ctx, current.QuestionID)
		if err != nil {
			t.Fatalf("load question: %v", err)
		}
		var correctID int64
		for _, c := range question.Choices {
			if c.Correct {
				correctID = c.ID
			}
		}
		fb, _, sum, err := engine.SubmitAnswer(ctx, telegramID, current.QuestionID, correctID)
		if err != nil {
			t.Fatalf("submit answer: %v", err)
		}
		if !fb.Correct {
			t.Fatalf("expected correct verdict on question %d", current.QuestionID)
		}
		summary = sum
	}
	if summary == nil || summary.Score != 3 {
		t.Fatalf("expected 3/3 summary, got %+v", summary)
	}

	// Points landed on the profile.
	user, err := users.User(ctx, telegramID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Points != 3 {
		t.Fatalf("expected 3 points credited, got %d", user.Points)
	}

	// The attempt shows up in the weekly window and lifetime stats.
	stats := app.NewStatsService(ledger, time.UTC)
	rows, err := stats.WeeklyLeaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("weekly leaderboard: %v", err)
	}
	if len(rows) != 1 || rows[0].TelegramID != telegramID || rows[0].Points != 3 {
		t.Fatalf("unexpected leaderboard %+v", rows)
	}

	lifetime, err := stats.Lifetime(ctx, telegramID)
	if err != nil {
		t.Fatalf("lifetime: %v", err)
	}
	if lifetime.Attempts != 1 || lifetime.Points != 3 {
		t.Fatalf("unexpected lifetime stats %+v", lifetime)
	}
}

func TestGroupDirectoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	db := openBun(t, ctx, pgURL)
	defer db.Close()

	users := postgres.NewUserStore(db)

	group, err := users.BindGroup(ctx, -100500, "Showroom")
	if err != nil {
		t.Fatalf("bind group: %v", err)
	}
	if !group.WeeklyEnabled {
		t.Fatal("expected weekly posting enabled on bind")
	}

	if err := users.SetWeeklyEnabled(ctx, -100500, false); err != nil {
		t.Fatalf("set weekly: %v", err)
	}
	groups, err := users.WeeklyGroups(ctx)
	if err != nil {
		t.Fatalf("weekly groups: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("expected no weekly groups, got %+v", groups)
	}
}

func openBun(t *testing.T, ctx context.Context, dsn string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedContent(t *testing.T, ctx context.Context, db *bun.DB) domain.Topic {
	t.Helper()
	store := postgres.NewContentStore(db)

	topic, err := store.CreateTopic(ctx, "Swatch")
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}
	for i := 0; i < 3; i++ {
		_, err := store.CreateQuestion(ctx, domain.Question{
			TopicID:       topic.ID,
			TextRU:        fmt.Sprintf("Вопрос %d", i+1),
			TextUZ:        fmt.Sprintf("Savol %d", i+1),
			ExplanationRU: "Пояснение",
			Choices: []domain.Choice{
				{TextRU: "Да", TextUZ: "Ha", Correct: true},
				{TextRU: "Нет", TextUZ: "Yo‘q"},
			},
		})
		if err != nil {
			t.Fatalf("create question: %v", err)
		}
	}
	return topic
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
