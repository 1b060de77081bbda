package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"

	"brandquiz-bot/internal/domain"
)

type topicRow struct {
	bun.BaseModel `bun:"table:topics"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID            int64  `bun:"id,pk,autoincrement"`
	TopicID       int64  `bun:"topic_id"`
	TextRU        string `bun:"text_ru"`
	TextUZ        string `bun:"text_uz"`
	ExplanationRU string `bun:"explanation_ru"`
	ExplanationUZ string `bun:"explanation_uz"`
	Difficulty    int    `bun:"difficulty"`
}

type choiceRow struct {
	bun.BaseModel `bun:"table:choices"`

	ID         int64  `bun:"id,pk,autoincrement"`
	QuestionID int64  `bun:"question_id"`
	TextRU     string `bun:"text_ru"`
	TextUZ     string `bun:"text_uz"`
	Correct    bool   `bun:"is_correct"`
}

// ContentStore writes catalog content: topics, questions and their choices.
// Used by the admin commands and the seed command; reads go through
// CatalogLoader.
type ContentStore struct {
	db *bun.DB
}

func NewContentStore(db *bun.DB) *ContentStore {
	return &ContentStore{db: db}
}

// CreateTopic inserts the topic if missing and returns the stored row either way.
func (s *ContentStore) CreateTopic(ctx context.Context, name string) (domain.Topic, error) {
	row := topicRow{Name: name}
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return domain.Topic{}, fmt.Errorf("create topic: %w", err)
	}
	if row.ID == 0 {
		if err := s.db.NewSelect().Model(&row).Where("name = ?", name).Scan(ctx); err != nil {
			return domain.Topic{}, fmt.Errorf("load topic: %w", err)
		}
	}
	return domain.Topic{ID: row.ID, Name: row.Name}, nil
}

// CreateQuestion inserts the question and its choices in one transaction and
// returns the stored question with ids assigned.
func (s *ContentStore) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*topicRow)(nil)).
			Where("id = ?", q.TopicID).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("check topic: %w", err)
		}
		if !exists {
			return domain.ErrTopicNotFound
		}

		row := questionRow{
			TopicID:       q.TopicID,
			TextRU:        q.TextRU,
			TextUZ:        q.TextUZ,
			ExplanationRU: q.ExplanationRU,
			ExplanationUZ: q.ExplanationUZ,
			Difficulty:    q.Difficulty,
		}
		if _, err := tx.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("create question: %w", err)
		}
		q.ID = row.ID

		for i := range q.Choices {
			choice := choiceRow{
				QuestionID: q.ID,
				TextRU:     q.Choices[i].TextRU,
				TextUZ:     q.Choices[i].TextUZ,
				Correct:    q.Choices[i].Correct,
			}
			if _, err := tx.NewInsert().Model(&choice).Returning("id").Exec(ctx); err != nil {
				return fmt.Errorf("create choice: %w", err)
			}
			q.Choices[i].ID = choice.ID
			q.Choices[i].QuestionID = q.ID
		}
		return nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return q, nil
}
