package session

import (
	"context"
	"sync"

	"storefront-cart/internal/domain"
)

// memoryRepo backs sessions when no database is configured (memory or
// redis cart backend in local development).
type memoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemory() Repository {
	return &memoryRepo{sessions: make(map[string]Session)}
}

func (r *memoryRepo) Create(_ context.Context, s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.Token]; ok {
		return domain.ErrAlreadyExists
	}
	r.sessions[s.Token] = s
	return nil
}

func (r *memoryRepo) Get(_ context.Context, token string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[token]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *memoryRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[token]; !ok {
		return domain.ErrNotFound
	}
	delete(r.sessions, token)
	return nil
}
