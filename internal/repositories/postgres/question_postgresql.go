package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/cache"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
	hooks        *commitHooks
}

// ===== BASIC CRUD OPERATIONS =====

// Create creates a new question and invalidates cached lists
func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	if err := q.db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	q.invalidateLists(ctx)
	return nil
}

// GetByID retrieves a question by ID with caching
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	question, _, err := cache.Remember(ctx, q.cacheManager.Question, cache.QuestionKey(id), func() (*models.Question, error) {
		var dbQuestion models.Question
		if err := q.db.WithContext(ctx).First(&dbQuestion, id).Error; err != nil {
			return nil, notFound(err, "question", id)
		}
		return &dbQuestion, nil
	})
	return question, err
}

// Delete retires a question: it leaves the active pool and listings filtered
// on active, but sessions already holding it in their order can still fetch
// and score it. Retiring twice reports not found.
func (q *QuestionPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to delete question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("question %d: %w", id, repositories.ErrNotFound)
	}

	q.hooks.onCommit(ctx, func(ctx context.Context) {
		cache.InvalidateQuestion(ctx, q.cacheManager, id)
	})
	return nil
}

func (q *QuestionPostgreSQL) invalidateLists(ctx context.Context) {
	q.hooks.onCommit(ctx, func(ctx context.Context) {
		cache.InvalidateQuestionLists(ctx, q.cacheManager)
	})
}

// ===== BULK OPERATIONS =====

// CreateBatch creates multiple questions in a batch
func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	if err := q.db.WithContext(ctx).CreateInBatches(questions, 100).Error; err != nil {
		return fmt.Errorf("failed to create questions batch: %w", err)
	}

	q.invalidateLists(ctx)
	return nil
}

// GetByIDs retrieves multiple questions, preserving the order of ids
func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error) {
	if len(ids) == 0 {
		return []*models.Question{}, nil
	}

	var found []*models.Question
	if err := q.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions by IDs: %w", err)
	}

	byID := make(map[uint]*models.Question, len(found))
	for _, question := range found {
		byID[question.ID] = question
	}

	questions := make([]*models.Question, 0, len(found))
	for _, id := range ids {
		if question, ok := byID[id]; ok {
			questions = append(questions, question)
		}
	}
	return questions, nil
}

// ===== QUERY OPERATIONS =====

// List retrieves questions with filters and pagination
func (q *QuestionPostgreSQL) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	query := applyQuestionFilters(q.db.WithContext(ctx).Model(&models.Question{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	var questions []*models.Question
	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, "id", filters.Limit, filters.Offset)
	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}

	return questions, total, nil
}

// ListActive returns every active question ordered by id, cached per framework
func (q *QuestionPostgreSQL) ListActive(ctx context.Context, framework *models.Framework) ([]*models.Question, error) {
	key := "list:active:all"
	if framework != nil {
		key = "list:active:" + string(*framework)
	}

	questions, _, err := cache.Remember(ctx, q.cacheManager.Question, key, func() ([]*models.Question, error) {
		query := q.db.WithContext(ctx).Where("active = ?", true)
		if framework != nil {
			query = query.Where("framework = ?", *framework)
		}

		var dbQuestions []*models.Question
		if err := query.Order("id ASC").Find(&dbQuestions).Error; err != nil {
			return nil, fmt.Errorf("failed to list active questions: %w", err)
		}
		return dbQuestions, nil
	})
	if err != nil {
		return nil, err
	}

	return questions, nil
}
