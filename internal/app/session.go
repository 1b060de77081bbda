package app

import "brandquiz-bot/internal/domain"

// SessionState tracks where a live session is in its lifecycle.
type SessionState int

const (
	// StateAwaitingAnswer means the question at the current position has been
	// (or can be) presented and an answer is expected.
	StateAwaitingAnswer SessionState = iota
	// StateCompleted means every question has been answered. Completed
	// sessions are discarded immediately after finalization.
	StateCompleted
)

// Session is the transient, in-memory state tracking progress through one
// attempt. It lives only in process memory: it is destroyed on normal
// completion and lost on restart, with no resumption contract. The transport
// serializes a single user's turns, so the session itself holds no lock.
type Session struct {
	telegramID  int64
	userID      int64
	attemptID   int64
	lang        domain.Language
	questionIDs []int64
	pos         int
	score       int
	state       SessionState
}

// NewSession is exported for infrastructure layers and their tests; the
// engine builds sessions itself during StartSession.
func NewSession(telegramID int64) *Session {
	return &Session{telegramID: telegramID}
}

// TelegramID returns the owning user's external identity.
func (s *Session) TelegramID() int64 { return s.telegramID }

// currentQuestion returns the question id at the current position.
func (s *Session) currentQuestion() (int64, error) {
	if s.state == StateCompleted || s.pos >= len(s.questionIDs) {
		return 0, domain.ErrSessionExhausted
	}
	return s.questionIDs[s.pos], nil
}

// advance records the outcome of the current question and moves the position
// forward, flipping to StateCompleted after the last question.
func (s *Session) advance(correct bool) {
	if correct {
		s.score++
	}
	s.pos++
	if s.pos == len(s.questionIDs) {
		s.state = StateCompleted
	}
}

func (s *Session) done() bool { return s.state == StateCompleted }
