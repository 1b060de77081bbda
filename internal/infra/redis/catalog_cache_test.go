package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"brandquiz-bot/internal/domain"
	"brandquiz-bot/internal/infra/memory"
)

func TestCatalogCachesQuestionsInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{CatalogLoader: seededStatic(t)}
	catalog := NewCatalog(client, loader, time.Minute)

	question, err := catalog.Question(context.Background(), 1)
	if err != nil {
		t.Fatalf("question: %v", err)
	}
	if loader.questionCalls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.questionCalls)
	}
	if len(question.Choices) != 2 {
		t.Fatalf("expected 2 choices, got %d", len(question.Choices))
	}

	// Second call should hit cache, loader not incremented.
	cached, err := catalog.Question(context.Background(), 1)
	if err != nil {
		t.Fatalf("question 2: %v", err)
	}
	if loader.questionCalls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.questionCalls)
	}
	if cached.TextRU != question.TextRU || len(cached.Choices) != len(question.Choices) {
		t.Fatal("cached question does not round-trip")
	}
}

func TestCatalogListingsBypassCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	catalog := NewCatalog(newClient(mr), seededStatic(t), time.Minute)

	ids, err := catalog.QuestionIDs(context.Background(), domain.MixedTopicID)
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 id, got %d", len(ids))
	}
	topics, err := catalog.Topics(context.Background())
	if err != nil {
		t.Fatalf("topics: %v", err)
	}
	if len(topics) != 1 {
		t.Fatalf("expected 1 topic, got %d", len(topics))
	}
}

type countingLoader struct {
	CatalogLoader
	questionCalls int
}

func (l *countingLoader) LoadQuestion(ctx context.Context, id int64) (domain.Question, error) {
	l.questionCalls++
	return l.CatalogLoader.LoadQuestion(ctx, id)
}

func seededStatic(t *testing.T) *memory.StaticCatalog {
	t.Helper()
	static := memory.NewStaticCatalog()
	ctx := context.Background()
	topic, err := static.CreateTopic(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}
	_, err = static.CreateQuestion(ctx, domain.Question{
		TopicID: topic.ID,
		TextRU:  "2+2?",
		TextUZ:  "2+2?",
		Choices: []domain.Choice{
			{TextRU: "3", TextUZ: "3"},
			{TextRU: "4", TextUZ: "4", Correct: true},
		},
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	return static
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
