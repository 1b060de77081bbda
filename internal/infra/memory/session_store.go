package memory

import (
	"sync"

	"brandquiz-bot/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionStore. One live
// session per Telegram user; Put replaces whatever was there.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.TelegramID()] = session
}

func (s *SessionStore) Get(telegramID int64) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[telegramID]
	return session, ok
}

func (s *SessionStore) Delete(telegramID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, telegramID)
}
