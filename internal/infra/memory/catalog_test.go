package memory

import (
	"context"
	"testing"
	"time"

	"brandquiz-bot/internal/domain"
)

func TestCatalogCachesQuestions(t *testing.T) {
	loader := &countingLoader{CatalogLoader: seededCatalog(t)}
	catalog := NewCatalog(loader, time.Minute)

	if _, err := catalog.Question(context.Background(), 1); err != nil {
		t.Fatalf("question: %v", err)
	}
	if loader.questionCalls != 1 {
		t.Fatalf("expected loader once, got %d", loader.questionCalls)
	}

	if _, err := catalog.Question(context.Background(), 1); err != nil {
		t.Fatalf("question 2: %v", err)
	}
	if loader.questionCalls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.questionCalls)
	}
}

func TestCatalogMixedSelectsAllTopics(t *testing.T) {
	catalog := NewCatalog(seededCatalog(t), time.Minute)

	all, err := catalog.QuestionIDs(context.Background(), domain.MixedTopicID)
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 ids across topics, got %d", len(all))
	}

	one, err := catalog.QuestionIDs(context.Background(), 1)
	if err != nil {
		t.Fatalf("question ids topic 1: %v", err)
	}
	if len(one) != 2 {
		t.Fatalf("expected 2 ids for topic 1, got %d", len(one))
	}
}

func TestStaticCatalogRejectsUnknownTopic(t *testing.T) {
	static := NewStaticCatalog()
	_, err := static.CreateQuestion(context.Background(), domain.Question{TopicID: 42, TextRU: "x"})
	if err != domain.ErrTopicNotFound {
		t.Fatalf("expected ErrTopicNotFound, got %v", err)
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

func seededCatalog(t *testing.T) *StaticCatalog {
	t.Helper()
	static := NewStaticCatalog()
	ctx := context.Background()

	alpha, err := static.CreateTopic(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}
	beta, err := static.CreateTopic(ctx, "Beta")
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}

	for _, q := range []domain.Question{
		{TopicID: alpha.ID, TextRU: "2+2?", TextUZ: "2+2?", Choices: []domain.Choice{
			{TextRU: "3", TextUZ: "3"},
			{TextRU: "4", TextUZ: "4", Correct: true},
		}},
		{TopicID: alpha.ID, TextRU: "3+3?", TextUZ: "3+3?", Choices: []domain.Choice{
			{TextRU: "6", TextUZ: "6", Correct: true},
			{TextRU: "7", TextUZ: "7"},
		}},
		{TopicID: beta.ID, TextRU: "5*5?", TextUZ: "5*5?", Choices: []domain.Choice{
			{TextRU: "25", TextUZ: "25", Correct: true},
			{TextRU: "20", TextUZ: "20"},
		}},
	} {
		if _, err := static.CreateQuestion(ctx, q); err != nil {
			t.Fatalf("create question: %v", err)
		}
	}
	return static
}
