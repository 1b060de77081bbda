package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"brandquiz-bot/internal/domain"
)

// CatalogLoader reads quiz content from Postgres. It serves the read path
// behind the caching catalog; content writes go through ContentStore.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadTopics(ctx context.Context) ([]domain.Topic, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, name FROM topics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}
	defer rows.Close()

	var topics []domain.Topic
	for rows.Next() {
		var t domain.Topic
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (l *CatalogLoader) LoadQuestionIDs(ctx context.Context, topicID int64) ([]int64, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if topicID == domain.MixedTopicID {
		rows, err = l.pool.Query(ctx, `SELECT id FROM questions ORDER BY id`)
	} else {
		rows, err = l.pool.Query(ctx, `SELECT id FROM questions WHERE topic_id=$1 ORDER BY id`, topicID)
	}
	if err != nil {
		return nil, fmt.Errorf("load question ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan question id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (l *CatalogLoader) LoadQuestion(ctx context.Context, id int64) (domain.Question, error) {
	var q domain.Question
	err := l.pool.QueryRow(ctx,
		`SELECT id, topic_id, text_ru, text_uz, explanation_ru, explanation_uz, difficulty
		 FROM questions WHERE id=$1`, id).
		Scan(&q.ID, &q.TopicID, &q.TextRU, &q.TextUZ, &q.ExplanationRU, &q.ExplanationUZ, &q.Difficulty)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question: %w", err)
	}

	rows, err := l.pool.Query(ctx,
		`SELECT id, question_id, text_ru, text_uz, is_correct
		 FROM choices WHERE question_id=$1 ORDER BY id`, id)
	if err != nil {
		return domain.Question{}, fmt.Errorf("load choices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Choice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.TextRU, &c.TextUZ, &c.Correct); err != nil {
			return domain.Question{}, fmt.Errorf("scan choice: %w", err)
		}
		q.Choices = append(q.Choices, c)
	}
	return q, rows.Err()
}
