package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/cache"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/repositories"
)

type SessionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
	hooks        *commitHooks
}

func (s *SessionPostgreSQL) Create(ctx context.Context, session *models.Session) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID retrieves a session with caching. Responses are not preloaded.
func (s *SessionPostgreSQL) GetByID(ctx context.Context, id string) (*models.Session, error) {
	session, _, err := cache.Remember(ctx, s.cacheManager.Session, cache.SessionKey(id), func() (*models.Session, error) {
		var dbSession models.Session
		if err := s.db.WithContext(ctx).Where("id = ?", id).First(&dbSession).Error; err != nil {
			return nil, notFound(err, "session", id)
		}
		return &dbSession, nil
	})
	return session, err
}

// GetForUpdate reads a session from the database and locks its row until the
// surrounding transaction ends. It never consults the cache.
func (s *SessionPostgreSQL) GetForUpdate(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := lockSession(s.db.WithContext(ctx), id).First(&session).Error; err != nil {
		return nil, notFound(err, "session", id)
	}
	return &session, nil
}

func lockSession(db *gorm.DB, id string) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id)
}

// Update saves the session progress fields
func (s *SessionPostgreSQL) Update(ctx context.Context, session *models.Session) error {
	err := s.db.WithContext(ctx).
		Model(session).
		Select("status", "current_index", "questions_answered", "completed_at", "updated_at").
		Updates(session).Error
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	id := session.ID
	s.hooks.onCommit(ctx, func(ctx context.Context) {
		cache.InvalidateSession(ctx, s.cacheManager, id)
	})
	return nil
}

func (s *SessionPostgreSQL) ListByUser(ctx context.Context, userID string, filters repositories.SessionFilters) ([]*models.Session, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Session{}).Where("user_id = ?", userID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	var sessions []*models.Session
	query = applyPaginationAndSort(query, "started_at", "desc", "started_at", filters.Limit, filters.Offset)
	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, total, nil
}

// ===== RESPONSES =====

func (s *SessionPostgreSQL) AddResponse(ctx context.Context, response *models.SwipeResponse) error {
	if err := s.db.WithContext(ctx).Create(response).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("question %d in session %s: %w", response.QuestionID, response.SessionID, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to save response: %w", err)
	}
	return nil
}

// ListResponses returns the responses of a session in display order
func (s *SessionPostgreSQL) ListResponses(ctx context.Context, sessionID string) ([]*models.SwipeResponse, error) {
	var responses []*models.SwipeResponse
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("display_order ASC").
		Find(&responses).Error; err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, nil
}

// ===== RESULTS =====

func (s *SessionPostgreSQL) SaveResult(ctx context.Context, result *models.SessionResult) error {
	if err := s.db.WithContext(ctx).Save(result).Error; err != nil {
		return fmt.Errorf("failed to save session result: %w", err)
	}
	return nil
}

func (s *SessionPostgreSQL) GetResult(ctx context.Context, sessionID string) (*models.SessionResult, error) {
	var result models.SessionResult
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&result).Error; err != nil {
		return nil, notFound(err, "session result", sessionID)
	}
	return &result, nil
}
