package repositories

import (
	"context"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
)

// UserRepository interface for user operations (read-only, users live in the identity provider)
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)
}
