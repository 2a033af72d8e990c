package port

import (
	"context"

	"issue-classifier/internal/domain/entity"
)

// SessionRepository stores chat sessions of the Telegram front end.
type SessionRepository interface {
	// Get returns the session of a user, creating an idle one if missing.
	Get(ctx context.Context, userID, chatID int64) (*entity.Session, error)

	// Save stores the session.
	Save(ctx context.Context, s *entity.Session) error
}
