package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"onepath_dispatch_backend/platform/apperr"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

const keyPrefix = "dispatch:session:"

// RedisStore persists contexts as JSON documents with a TTL, so sessions
// survive process restarts and expire without a sweeper. Writer locks are
// process local; the deployment runs a single orchestrator instance per
// request stream.
type RedisStore struct {
	client  *redis.Client
	ttl     time.Duration
	writers *keyedMutex
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:  client,
		ttl:     ttl,
		writers: newKeyedMutex(),
	}
}

func (s *RedisStore) Create(ctx context.Context, sc *domain.Context) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to encode session", err).WithOp("session.Create")
	}
	ok, err := s.client.SetNX(ctx, keyPrefix+sc.RequestID, data, s.ttl).Result()
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "session store unavailable", err).WithOp("session.Create")
	}
	if !ok {
		return apperr.Conflict("session already exists").WithOp("session.Create")
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, requestID string) (*domain.Context, error) {
	data, err := s.client.Get(ctx, keyPrefix+requestID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.NotFound("session not found").WithOp("session.Get")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "session store unavailable", err).WithOp("session.Get")
	}
	var sc domain.Context
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to decode session", err).WithOp("session.Get")
	}
	return &sc, nil
}

func (s *RedisStore) Update(ctx context.Context, requestID string, fn func(*domain.Context) error) (*domain.Context, error) {
	lock := s.writers.get(requestID)
	lock.Lock()
	defer lock.Unlock()

	sc, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := fn(sc); err != nil {
		return nil, err
	}

	data, err := json.Marshal(sc)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to encode session", err).WithOp("session.Update")
	}
	// Refresh the TTL on every write so active conversations never expire
	// mid-exchange.
	if err := s.client.Set(ctx, keyPrefix+requestID, data, s.ttl).Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "session store unavailable", err).WithOp("session.Update")
	}
	return sc.Clone(), nil
}

func (s *RedisStore) Clear(ctx context.Context, requestID string) (bool, error) {
	// Taking the write lock keeps Clear ordered against in-flight Updates,
	// so an Update cannot re-Set a session deleted under it.
	lock := s.writers.get(requestID)
	lock.Lock()
	defer lock.Unlock()

	removed, err := s.client.Del(ctx, keyPrefix+requestID).Result()
	if err != nil {
		return false, apperr.Wrap(apperr.KindUnavailable, "session store unavailable", err).WithOp("session.Clear")
	}
	s.writers.drop(requestID)
	return removed > 0, nil
}
