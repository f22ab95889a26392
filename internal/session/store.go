// Package session persists conversation contexts between the initial request
// and its follow-ups.
//
// Stores hand out deep copies only. All mutation goes through Update, which
// serializes writers per requestId so concurrent follow-ups cannot interleave
// half-applied merges.
package session

import (
	"context"
	"sync"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

// Store is the persistence contract for conversation contexts.
type Store interface {
	// Create stores a fresh context. Fails with a conflict error when the
	// requestId already exists.
	Create(ctx context.Context, sc *domain.Context) error

	// Get returns a deep copy of the stored context, or a not-found error.
	Get(ctx context.Context, requestID string) (*domain.Context, error)

	// Update applies fn to the stored context under the request's write lock
	// and persists the result. fn receives a copy it may mutate freely; an
	// error from fn aborts the update without persisting. Returns a deep
	// copy of the persisted context.
	Update(ctx context.Context, requestID string, fn func(*domain.Context) error) (*domain.Context, error)

	// Clear removes the context and reports whether one was removed.
	// Clearing an unknown requestId returns false without an error.
	Clear(ctx context.Context, requestID string) (bool, error)
}

// keyedMutex hands out one mutex per key so writers to different requests
// never contend with each other.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if m, ok := k.locks[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	k.locks[key] = m
	return m
}

func (k *keyedMutex) drop(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.locks, key)
}
