package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"salespilot/prospector-service/internal/model"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore implements SessionStore on Redis. The credential service
// writes one JSON session per operator under session:<operatorId>; this store
// only reads and touches it.
type RedisSessionStore struct {
	rdb *redis.Client
}

// NewRedisSessionStore returns a SessionStore backed by rdb.
func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

// GetSession loads the operator's session. Missing key maps to ErrNoSession.
func (s *RedisSessionStore) GetSession(ctx context.Context, operatorID string) (*model.Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKeyPrefix+operatorID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session for %s: %w", operatorID, err)
	}

	var sess model.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decode session for %s: %w", operatorID, err)
	}
	return &sess, nil
}

// TouchSession rewrites the session with an updated lastUsedAt, preserving
// whatever TTL the credential service set on the key.
func (s *RedisSessionStore) TouchSession(ctx context.Context, operatorID string, usedAt time.Time) error {
	sess, err := s.GetSession(ctx, operatorID)
	if err != nil {
		return err
	}
	sess.LastUsedAt = usedAt

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session for %s: %w", operatorID, err)
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+operatorID, raw, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("touch session for %s: %w", operatorID, err)
	}
	return nil
}
