package domain

import "time"

// Language is a UI language preference.
type Language string

const (
	LangRU Language = "RU"
	LangUZ Language = "UZ"

	DefaultLanguage = LangRU
)

// MixedTopicID selects questions across the whole catalog. It is a selection
// mode, not a stored topic, and never appears as a catalog row.
const MixedTopicID int64 = 0

// User maps an external Telegram identity to an internal profile.
type User struct {
	ID           int64    `json:"id"`
	TelegramID   int64    `json:"telegramId"`
	Lang         Language `json:"lang"`
	DailyEnabled bool     `json:"dailyEnabled"`
	Points       int      `json:"points"`
}

// Topic is a named grouping of questions.
type Topic struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Question is an MCQ question with bilingual prompt and explanation text.
type Question struct {
	ID            int64    `json:"id"`
	TopicID       int64    `json:"topicId"`
	TextRU        string   `json:"textRu"`
	TextUZ        string   `json:"textUz"`
	ExplanationRU string   `json:"explanationRu"`
	ExplanationUZ string   `json:"explanationUz"`
	Difficulty    int      `json:"difficulty"`
	Choices       []Choice `json:"choices"`
}

// Prompt returns the question text for the given language.
func (q Question) Prompt(lang Language) string {
	if lang == LangUZ {
		return q.TextUZ
	}
	return q.TextRU
}

// Explanation returns the explanation text for the given language.
func (q Question) Explanation(lang Language) string {
	if lang == LangUZ {
		return q.ExplanationUZ
	}
	return q.ExplanationRU
}

// Choice is one selectable answer option. Its correctness flag is the sole
// truth for scoring regardless of display order.
type Choice struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"questionId"`
	TextRU     string `json:"textRu"`
	TextUZ     string `json:"textUz"`
	Correct    bool   `json:"correct"`
}

// Label returns the choice text for the given language.
func (c Choice) Label(lang Language) string {
	if lang == LangUZ {
		return c.TextUZ
	}
	return c.TextRU
}

// Attempt is the durable record of one quiz session. FinishedAt stays nil
// while the session is in progress; an attempt that never receives a
// terminating write is an orphan and keeps its score of zero.
type Attempt struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"userId"`
	TopicID    int64      `json:"topicId"` // MixedTopicID for cross-topic attempts
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Total      int        `json:"total"`
	Score      int        `json:"score"`
}

// Answer is a single answer event. Append-only, one row per question per
// attempt, with correctness denormalized at write time.
type Answer struct {
	ID         int64     `json:"id"`
	AttemptID  int64     `json:"attemptId"`
	QuestionID int64     `json:"questionId"`
	ChoiceID   int64     `json:"choiceId"`
	Correct    bool      `json:"correct"`
	AnsweredAt time.Time `json:"answeredAt"`
}

// ChoiceView is a choice as presented to the user, already localized.
type ChoiceView struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// QuestionCard is one question ready for delivery: localized prompt and
// choices in a randomized display order.
type QuestionCard struct {
	QuestionID int64        `json:"questionId"`
	Number     int          `json:"number"` // 1-based position within the session
	Total      int          `json:"total"`
	Prompt     string       `json:"prompt"`
	Choices    []ChoiceView `json:"choices"`
}

// AnswerFeedback is the instant feedback returned for every submission.
type AnswerFeedback struct {
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

// SessionSummary closes out a completed session.
type SessionSummary struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// Percent is the share of correct answers, rounded to the nearest integer.
func (s SessionSummary) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return (s.Score*100 + s.Total/2) / s.Total
}

// LeaderboardRow is one ranked entry of a windowed leaderboard.
type LeaderboardRow struct {
	TelegramID int64 `json:"telegramId"`
	Points     int   `json:"points"`
}

// LifetimeStats aggregates all of a user's attempts, unfiltered by window.
type LifetimeStats struct {
	Attempts int `json:"attempts"`
	Points   int `json:"points"`
}

// Group is a chat bound for weekly leaderboard auto-posting.
type Group struct {
	ID            int64  `json:"id"`
	ChatID        int64  `json:"chatId"`
	Title         string `json:"title"`
	WeeklyEnabled bool   `json:"weeklyEnabled"`
}
