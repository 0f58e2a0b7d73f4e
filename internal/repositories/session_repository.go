package repositories

import (
	"context"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
)

// SessionRepository stores swipe sessions, their responses and results
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	// GetForUpdate bypasses the cache and row-locks the session inside a transaction
	GetForUpdate(ctx context.Context, id string) (*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	ListByUser(ctx context.Context, userID string, filters SessionFilters) ([]*models.Session, int64, error)

	AddResponse(ctx context.Context, response *models.SwipeResponse) error
	ListResponses(ctx context.Context, sessionID string) ([]*models.SwipeResponse, error)

	SaveResult(ctx context.Context, result *models.SessionResult) error
	GetResult(ctx context.Context, sessionID string) (*models.SessionResult, error)
}
