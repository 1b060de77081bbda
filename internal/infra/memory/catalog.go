package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"brandquiz-bot/internal/domain"
)

// CatalogLoader fetches quiz content from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadTopics(ctx context.Context) ([]domain.Topic, error)
	LoadQuestionIDs(ctx context.Context, topicID int64) ([]int64, error)
	LoadQuestion(ctx context.Context, id int64) (domain.Question, error)
}

// Catalog caches question content with TTL to avoid repeated DB hits. Topic
// and id listings are cheap and pass straight through to the loader.
type Catalog struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[int64]cachedQuestion
}

type cachedQuestion struct {
	question  domain.Question
	expiresAt time.Time
}

func NewCatalog(loader CatalogLoader, ttl time.Duration) *Catalog {
	return &Catalog{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int64]cachedQuestion),
	}
}

func (c *Catalog) Topics(ctx context.Context) ([]domain.Topic, error) {
	return c.loader.LoadTopics(ctx)
}

func (c *Catalog) QuestionIDs(ctx context.Context, topicID int64) ([]int64, error) {
	return c.loader.LoadQuestionIDs(ctx, topicID)
}

func (c *Catalog) Question(ctx context.Context, id int64) (domain.Question, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[id]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.question, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[id]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.question, nil
		}
		c.mu.RUnlock()

		question, err := c.loader.LoadQuestion(ctx, id)
		if err != nil {
			return domain.Question{}, err
		}

		c.mu.Lock()
		c.cache[id] = cachedQuestion{
			question:  question,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return question, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return result.(domain.Question), nil
}

func (c *Catalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticCatalog is a loader backed by in-memory maps, used for tests and the
// no-database demo mode. It also accepts new content, so the admin commands
// keep working without Postgres.
type StaticCatalog struct {
	mu        sync.RWMutex
	topics    map[int64]domain.Topic
	questions map[int64]domain.Question

	nextTopicID    int64
	nextQuestionID int64
	nextChoiceID   int64
}

func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{
		topics:    make(map[int64]domain.Topic),
		questions: make(map[int64]domain.Question),
	}
}

func (l *StaticCatalog) LoadTopics(_ context.Context) ([]domain.Topic, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	topics := make([]domain.Topic, 0, len(l.topics))
	for id := int64(1); id <= l.nextTopicID; id++ {
		if t, ok := l.topics[id]; ok {
			topics = append(topics, t)
		}
	}
	return topics, nil
}

func (l *StaticCatalog) LoadQuestionIDs(_ context.Context, topicID int64) ([]int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]int64, 0, len(l.questions))
	for id := int64(1); id <= l.nextQuestionID; id++ {
		q, ok := l.questions[id]
		if !ok {
			continue
		}
		if topicID == domain.MixedTopicID || q.TopicID == topicID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (l *StaticCatalog) LoadQuestion(_ context.Context, id int64) (domain.Question, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if q, ok := l.questions[id]; ok {
		return q, nil
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

func (l *StaticCatalog) CreateTopic(_ context.Context, name string) (domain.Topic, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.topics {
		if t.Name == name {
			return t, nil
		}
	}
	l.nextTopicID++
	topic := domain.Topic{ID: l.nextTopicID, Name: name}
	l.topics[topic.ID] = topic
	return topic, nil
}

func (l *StaticCatalog) CreateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.topics[q.TopicID]; !ok {
		return domain.Question{}, domain.ErrTopicNotFound
	}
	l.nextQuestionID++
	q.ID = l.nextQuestionID
	for i := range q.Choices {
		l.nextChoiceID++
		q.Choices[i].ID = l.nextChoiceID
		q.Choices[i].QuestionID = q.ID
	}
	l.questions[q.ID] = q
	return q, nil
}
