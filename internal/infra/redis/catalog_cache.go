package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"brandquiz-bot/internal/domain"
)

// CatalogLoader fetches quiz content from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadTopics(ctx context.Context) ([]domain.Topic, error)
	LoadQuestionIDs(ctx context.Context, topicID int64) ([]int64, error)
	LoadQuestion(ctx context.Context, id int64) (domain.Question, error)
}

// Catalog caches full question payloads in Redis as JSON under
// question:{id} and falls back to a loader on cache miss. Topic and id
// listings pass straight through to the loader.
type Catalog struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalog(client *redis.Client, loader CatalogLoader, ttl time.Duration) *Catalog {
	return &Catalog{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *Catalog) Topics(ctx context.Context) ([]domain.Topic, error) {
	return c.loader.LoadTopics(ctx)
}

func (c *Catalog) QuestionIDs(ctx context.Context, topicID int64) ([]int64, error) {
	return c.loader.LoadQuestionIDs(ctx, topicID)
}

func (c *Catalog) Question(ctx context.Context, id int64) (domain.Question, error) {
	key := questionKey(id)

	if question, ok := c.fromCache(ctx, key); ok {
		return question, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if question, ok := c.fromCache(ctx, key); ok {
			return question, nil
		}

		question, err := c.loader.LoadQuestion(ctx, id)
		if err != nil {
			return domain.Question{}, err
		}

		if payload, err := json.Marshal(question); err == nil {
			_ = c.client.Set(ctx, key, payload, c.ttlWithJitter()).Err()
		}
		return question, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return result.(domain.Question), nil
}

func (c *Catalog) fromCache(ctx context.Context, key string) (domain.Question, bool) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Question{}, false
	}
	var question domain.Question
	if err := json.Unmarshal(payload, &question); err != nil {
		return domain.Question{}, false
	}
	return question, true
}

func questionKey(id int64) string {
	return "question:" + strconv.FormatInt(id, 10)
}

func (c *Catalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
