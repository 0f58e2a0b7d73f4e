package repositories

import (
	"context"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
)

// QuestionRepository interface for question-specific operations
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	Delete(ctx context.Context, id uint) error

	// Bulk operations
	CreateBatch(ctx context.Context, questions []*models.Question) error
	// GetByIDs returns the found questions in the order of ids; unknown ids are skipped
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error)

	// Query operations
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)
	// ListActive returns every active question ordered by id, the input of session orderings
	ListActive(ctx context.Context, framework *models.Framework) ([]*models.Question, error)
}
