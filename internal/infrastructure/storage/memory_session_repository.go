package storage

import (
	"context"
	"sync"

	"issue-classifier/internal/domain/entity"
	"issue-classifier/internal/domain/port"
)

// MemorySessionRepository keeps chat sessions in process memory.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[int64]*entity.Session
}

// NewMemorySessionRepository creates an empty repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[int64]*entity.Session),
	}
}

// Get returns the user's session, creating an idle one if not found.
func (r *MemorySessionRepository) Get(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	r.mu.RLock()
	s, exists := r.sessions[userID]
	r.mu.RUnlock()

	if exists {
		return s, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another handler may have created it meanwhile.
	if s, exists := r.sessions[userID]; exists {
		return s, nil
	}
	s = entity.NewSession(userID, chatID)
	r.sessions[userID] = s

	return s, nil
}

// Save stores the session.
func (r *MemorySessionRepository) Save(ctx context.Context, s *entity.Session) error {
	r.mu.Lock()
	r.sessions[s.UserID] = s
	r.mu.Unlock()

	return nil
}

var _ port.SessionRepository = (*MemorySessionRepository)(nil)
