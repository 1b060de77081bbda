package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"brandquiz-bot/internal/domain"
)

// DefaultQuestionCount is used when the caller does not request a session size.
const DefaultQuestionCount = 10

// SessionStore holds live sessions keyed by the user's external identity.
// At most one session per user: Put replaces any existing session, silently
// discarding the previous in-memory state. The replaced session's attempt row
// stays open in the ledger and is never finalized.
type SessionStore interface {
	Put(s *Session)
	Get(telegramID int64) (*Session, bool)
	Delete(telegramID int64)
}

// Catalog is the read-only content store (topics, questions, choices).
type Catalog interface {
	Topics(ctx context.Context) ([]domain.Topic, error)
	// QuestionIDs lists the ids available for a topic; domain.MixedTopicID
	// selects across the whole catalog.
	QuestionIDs(ctx context.Context, topicID int64) ([]int64, error)
	Question(ctx context.Context, id int64) (domain.Question, error)
}

// AttemptLedger is the durable attempt/answer log. FinalizeAttempt commits
// the completion timestamp, the final score and the user's points credit in a
// single transaction; it is the sole mutator of a user's cumulative points.
type AttemptLedger interface {
	CreateAttempt(ctx context.Context, userID, topicID int64, startedAt time.Time, total int) (int64, error)
	AppendAnswer(ctx context.Context, a domain.Answer) error
	FinalizeAttempt(ctx context.Context, attemptID, userID int64, finishedAt time.Time, score int) error
}

// UserRegistry resolves external Telegram identities to internal users,
// creating a profile on first contact.
type UserRegistry interface {
	EnsureUser(ctx context.Context, telegramID int64) (domain.User, error)
}

// Engine is the quiz session engine: it sequences questions, validates
// answers, keeps the running score and finalizes attempts. All durable state
// goes through the ledger and registry; the only live mutable state is the
// session store.
type Engine struct {
	sessions SessionStore
	catalog  Catalog
	ledger   AttemptLedger
	users    UserRegistry

	clock func() time.Time

	// rnd backs both question sampling and choice shuffling. Sessions of
	// different users may run concurrently, so access is serialized.
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewEngine(sessions SessionStore, catalog Catalog, ledger AttemptLedger, users UserRegistry) *Engine {
	return NewEngineWithRand(sessions, catalog, ledger, users,
		rand.New(rand.NewSource(time.Now().UnixNano())), time.Now)
}

// NewEngineWithRand pins the random source and clock so tests can assert
// exact question and choice orderings.
func NewEngineWithRand(sessions SessionStore, catalog Catalog, ledger AttemptLedger, users UserRegistry, rnd *rand.Rand, clock func() time.Time) *Engine {
	return &Engine{
		sessions: sessions,
		catalog:  catalog,
		ledger:   ledger,
		users:    users,
		clock:    clock,
		rnd:      rnd,
	}
}

// StartSession draws up to count distinct questions for the topic (or the
// whole catalog for domain.MixedTopicID), creates the attempt row and a fresh
// session, and returns the first question. If the durable write fails, no
// session is installed and no partial attempt remains visible to the engine.
func (e *Engine) StartSession(ctx context.Context, telegramID, topicID int64, count int) (domain.QuestionCard, error) {
	if count <= 0 {
		count = DefaultQuestionCount
	}

	user, err := e.users.EnsureUser(ctx, telegramID)
	if err != nil {
		return domain.QuestionCard{}, domain.NewStorageError("ensure user", err)
	}

	ids, err := e.catalog.QuestionIDs(ctx, topicID)
	if err != nil {
		return domain.QuestionCard{}, domain.NewStorageError("list questions", err)
	}
	if len(ids) == 0 {
		return domain.QuestionCard{}, domain.ErrEmptyCatalog
	}

	picked := e.sample(ids, count)
	attemptID, err := e.ledger.CreateAttempt(ctx, user.ID, topicID, e.clock(), len(picked))
	if err != nil {
		return domain.QuestionCard{}, domain.NewStorageError("create attempt", err)
	}

	session := &Session{
		telegramID:  telegramID,
		userID:      user.ID,
		attemptID:   attemptID,
		lang:        user.Lang,
		questionIDs: picked,
		state:       StateAwaitingAnswer,
	}
	e.sessions.Put(session)

	return e.card(ctx, session)
}

// CurrentQuestion re-presents the question at the session's current position,
// with the choices shuffled anew.
func (e *Engine) CurrentQuestion(ctx context.Context, telegramID int64) (domain.QuestionCard, error) {
	session, ok := e.sessions.Get(telegramID)
	if !ok {
		return domain.QuestionCard{}, domain.ErrSessionNotFound
	}
	return e.card(ctx, session)
}

// SubmitAnswer grades the choice against the question at the current
// position, appends the answer event, and advances the session. It returns
// the feedback plus either the next question or, after the last question, the
// session summary. A stale or invalid submission mutates nothing.
func (e *Engine) SubmitAnswer(ctx context.Context, telegramID, questionID, choiceID int64) (domain.AnswerFeedback, *domain.QuestionCard, *domain.SessionSummary, error) {
	session, ok := e.sessions.Get(telegramID)
	if !ok {
		return domain.AnswerFeedback{}, nil, nil, domain.ErrSessionNotFound
	}

	current, err := session.currentQuestion()
	if err != nil {
		return domain.AnswerFeedback{}, nil, nil, err
	}
	if current != questionID {
		return domain.AnswerFeedback{}, nil, nil, domain.ErrStaleAnswer
	}

	question, err := e.catalog.Question(ctx, questionID)
	if err != nil {
		return domain.AnswerFeedback{}, nil, nil, domain.NewStorageError("load question", err)
	}
	choice, ok := findChoice(question, choiceID)
	if !ok {
		return domain.AnswerFeedback{}, nil, nil, domain.ErrInvalidChoice
	}

	if err := e.ledger.AppendAnswer(ctx, domain.Answer{
		AttemptID:  session.attemptID,
		QuestionID: questionID,
		ChoiceID:   choiceID,
		Correct:    choice.Correct,
		AnsweredAt: e.clock(),
	}); err != nil {
		return domain.AnswerFeedback{}, nil, nil, domain.NewStorageError("append answer", err)
	}

	session.advance(choice.Correct)
	feedback := domain.AnswerFeedback{
		Correct:     choice.Correct,
		Explanation: question.Explanation(session.lang),
	}

	if session.done() {
		if err := e.ledger.FinalizeAttempt(ctx, session.attemptID, session.userID, e.clock(), session.score); err != nil {
			return feedback, nil, nil, domain.NewStorageError("finalize attempt", err)
		}
		e.sessions.Delete(session.telegramID)
		summary := &domain.SessionSummary{Score: session.score, Total: len(session.questionIDs)}
		return feedback, nil, summary, nil
	}

	next, err := e.card(ctx, session)
	if err != nil {
		return feedback, nil, nil, err
	}
	return feedback, &next, nil, nil
}

// sample draws up to n distinct ids by uniform shuffle without replacement.
func (e *Engine) sample(ids []int64, n int) []int64 {
	picked := make([]int64, len(ids))
	copy(picked, ids)
	e.mu.Lock()
	e.rnd.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	e.mu.Unlock()
	if n < len(picked) {
		picked = picked[:n]
	}
	return picked
}

// card builds the localized question payload for the session's current
// position. Display order is randomized per presentation; the underlying
// correctness flags are untouched.
func (e *Engine) card(ctx context.Context, session *Session) (domain.QuestionCard, error) {
	qid, err := session.currentQuestion()
	if err != nil {
		return domain.QuestionCard{}, err
	}
	question, err := e.catalog.Question(ctx, qid)
	if err != nil {
		return domain.QuestionCard{}, domain.NewStorageError("load question", err)
	}

	views := make([]domain.ChoiceView, 0, len(question.Choices))
	for _, c := range question.Choices {
		views = append(views, domain.ChoiceView{ID: c.ID, Label: c.Label(session.lang)})
	}
	e.mu.Lock()
	e.rnd.Shuffle(len(views), func(i, j int) {
		views[i], views[j] = views[j], views[i]
	})
	e.mu.Unlock()

	return domain.QuestionCard{
		QuestionID: question.ID,
		Number:     session.pos + 1,
		Total:      len(session.questionIDs),
		Prompt:     question.Prompt(session.lang),
		Choices:    views,
	}, nil
}

func findChoice(q domain.Question, choiceID int64) (domain.Choice, bool) {
	for _, c := range q.Choices {
		if c.ID == choiceID {
			return c, true
		}
	}
	return domain.Choice{}, false
}
