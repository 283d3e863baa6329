package session

import (
	"encoding/json"
	"strconv"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/entity/session"
	"max.ks1230/expense-tracker/internal/logger"
)

const keyPrefix = "session:"

type config interface {
	Hosts() []string
}

// MemcacheSessions keeps chat sessions in memcached so several bot
// instances can share login state. Sessions are JSON-encoded per chat.
type MemcacheSessions struct {
	client *memcache.Client
}

func NewMemcacheSessions(config config) (*MemcacheSessions, error) {
	logger.Info("memcached hosts", zap.Strings("hosts", config.Hosts()))
	mc := memcache.New(config.Hosts()...)
	return &MemcacheSessions{mc}, mc.Ping()
}

func formatKey(chatID int64) string {
	return keyPrefix + strconv.FormatInt(chatID, 10)
}

func (s *MemcacheSessions) Get(chatID int64) (session.Session, error) {
	item, err := s.client.Get(formatKey(chatID))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return session.Session{}, nil
	}
	if err != nil {
		return session.Session{}, errors.Wrap(err, "get session")
	}
	return DecodeSession(item.Value)
}

func (s *MemcacheSessions) Save(chatID int64, sess session.Session) error {
	value, err := EncodeSession(sess)
	if err != nil {
		return errors.Wrap(err, "save session")
	}
	return errors.Wrap(s.client.Set(&memcache.Item{
		Key:   formatKey(chatID),
		Value: value,
	}), "save session")
}

func (s *MemcacheSessions) Drop(chatID int64) error {
	err := s.client.Delete(formatKey(chatID))
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return errors.Wrap(err, "drop session")
	}
	return nil
}

func EncodeSession(sess session.Session) ([]byte, error) {
	return json.Marshal(sess)
}

func DecodeSession(value []byte) (session.Session, error) {
	var sess session.Session
	err := json.Unmarshal(value, &sess)
	return sess, errors.Wrap(err, "decode session")
}
