package session

import (
	"context"
	"sync"

	"onepath_dispatch_backend/platform/apperr"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

// MemoryStore keeps contexts in process memory. It is the default backend
// when no Redis URL is configured; contexts live for the process lifetime
// unless cleared.
type MemoryStore struct {
	mu       sync.RWMutex
	contexts map[string]*domain.Context
	writers  *keyedMutex
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contexts: make(map[string]*domain.Context),
		writers:  newKeyedMutex(),
	}
}

func (s *MemoryStore) Create(_ context.Context, sc *domain.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.contexts[sc.RequestID]; exists {
		return apperr.Conflict("session already exists").WithOp("session.Create")
	}
	s.contexts[sc.RequestID] = sc.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, requestID string) (*domain.Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.contexts[requestID]
	if !ok {
		return nil, apperr.NotFound("session not found").WithOp("session.Get")
	}
	return sc.Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, requestID string, fn func(*domain.Context) error) (*domain.Context, error) {
	lock := s.writers.get(requestID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	stored, ok := s.contexts[requestID]
	s.mu.RUnlock()
	if !ok {
		return nil, apperr.NotFound("session not found").WithOp("session.Update")
	}

	next := stored.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The session may have been cleared between the read and the write-back;
	// writing anyway would resurrect it.
	if _, ok := s.contexts[requestID]; !ok {
		return nil, apperr.NotFound("session not found").WithOp("session.Update")
	}
	s.contexts[requestID] = next

	return next.Clone(), nil
}

func (s *MemoryStore) Clear(_ context.Context, requestID string) (bool, error) {
	// Taking the write lock keeps Clear ordered against in-flight Updates.
	lock := s.writers.get(requestID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	_, existed := s.contexts[requestID]
	delete(s.contexts, requestID)
	s.mu.Unlock()
	s.writers.drop(requestID)
	return existed, nil
}
