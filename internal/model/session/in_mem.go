package session

import (
	"max.ks1230/expense-tracker/internal/entity/session"
)

// InMemSessions keeps chat sessions in process memory. Logins do not
// survive a restart, which is acceptable for a single-instance bot.
type InMemSessions struct {
	sessions map[int64]session.Session
}

func NewInMemSessions() *InMemSessions {
	return &InMemSessions{sessions: make(map[int64]session.Session)}
}

func (s *InMemSessions) Get(chatID int64) (session.Session, error) {
	return s.sessions[chatID], nil
}

func (s *InMemSessions) Save(chatID int64, sess session.Session) error {
	s.sessions[chatID] = sess
	return nil
}

func (s *InMemSessions) Drop(chatID int64) error {
	delete(s.sessions, chatID)
	return nil
}
