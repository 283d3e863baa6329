package storage

import (
	"context"

	"max.ks1230/expense-tracker/internal/entity/expense"
)

// InMemStorage keeps logs in a plain map. Used by tests and ephemeral
// runs; contents are gone on restart.
type InMemStorage struct {
	logs map[string]expense.Log
}

func NewInMemStorage() *InMemStorage {
	return &InMemStorage{logs: make(map[string]expense.Log)}
}

func (s *InMemStorage) Load(_ context.Context, user string) (expense.Log, error) {
	log := s.logs[user]
	res := make(expense.Log, len(log))
	copy(res, log)
	return res, nil
}

func (s *InMemStorage) Append(_ context.Context, user string, rec expense.Record) (expense.Record, error) {
	log := s.logs[user]
	rec.ID = log.NextID()
	s.logs[user] = append(log, rec)
	return rec, nil
}

func (s *InMemStorage) Overwrite(_ context.Context, user string, log expense.Log) error {
	res := make(expense.Log, len(log))
	copy(res, log)
	s.logs[user] = res
	return nil
}
