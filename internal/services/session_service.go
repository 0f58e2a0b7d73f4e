package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/events"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/metrics"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/ordering"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/results"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/validator"
)

type sessionService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	validator      *validator.Validator
	defaults       ordering.Options
	now            func() time.Time
}

func NewSessionService(repo repositories.Repository, publisher events.EventPublisher, m *metrics.Metrics, logger *slog.Logger, validator *validator.Validator, defaults ordering.Options) SessionService {
	if publisher == nil {
		publisher = events.NoopEventPublisher{}
	}
	return &sessionService{
		repo:           repo,
		eventPublisher: publisher,
		metrics:        m,
		logger:         logger,
		validator:      validator,
		defaults:       defaults,
		now:            time.Now,
	}
}

// Start orders the active question set for a new session. Without an explicit
// seed, the seed is derived from the session id so each session differs but
// can be replayed.
func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest, userID string) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	sessionID := uuid.New().String()
	opts := req.Options.Apply(s.defaults)
	if req.Options.Seed == nil {
		opts.Seed = SessionSeed(sessionID)
	}

	s.logger.Info("Starting session", "user_id", userID, "session_id", sessionID, "seed", opts.Seed)

	active, err := s.repo.Question().ListActive(ctx, req.Framework)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	if len(active) == 0 {
		return nil, ErrNoQuestions
	}

	start := time.Now()
	plan := ordering.Sequence(derefQuestions(active), opts)
	s.metrics.OrderingComputed(time.Since(start), plan.Deferred, plan.Flushed, plan.LongestRun)

	now := s.now()
	session := &models.Session{
		ID:             sessionID,
		UserID:         userID,
		Status:         models.SessionInProgress,
		Seed:           opts.Seed,
		MaxRun:         opts.MaxRun,
		WarmupCount:    opts.WarmupCount,
		FinaleCount:    opts.FinaleCount,
		Order:          plan.Orders,
		TotalQuestions: len(plan.Orders),
		StartedAt:      now,
	}
	if err := s.repo.Session().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.SessionTransition("started")
	s.publish(ctx, events.EventSessionStarted, events.SessionStartedEvent{
		SessionID:      session.ID,
		UserID:         userID,
		Seed:           session.Seed,
		TotalQuestions: session.TotalQuestions,
	})

	s.logger.Info("Session started successfully",
		"session_id", session.ID,
		"total_questions", session.TotalQuestions,
		"deferred", plan.Deferred,
		"longest_run", plan.LongestRun)

	return toSessionResponse(session, true), nil
}

func (s *sessionService) Get(ctx context.Context, sessionID, userID string) (*SessionResponse, error) {
	session, err := s.ownedSession(ctx, s.repo.Session().GetByID, sessionID, userID, "read")
	if err != nil {
		return nil, err
	}
	return toSessionResponse(session, session.Status != models.SessionInProgress), nil
}

// Next returns the question at the session cursor
func (s *sessionService) Next(ctx context.Context, sessionID, userID string) (*NextQuestionResponse, error) {
	session, err := s.ownedSession(ctx, s.repo.Session().GetByID, sessionID, userID, "read")
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionInProgress || session.IsComplete() {
		return nil, ErrSessionCompleted
	}

	entry := session.Order[session.CurrentIndex]
	question, err := s.repo.Question().GetByID(ctx, entry.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	return &NextQuestionResponse{
		SessionID:      session.ID,
		DisplayOrder:   entry.DisplayOrder,
		TotalQuestions: session.TotalQuestions,
		Question:       QuestionView{ID: question.ID, Text: question.Text},
	}, nil
}

// RecordResponse stores a swipe on the current question and advances the
// cursor. The session row stays locked for the whole transaction, so a
// repeated or concurrent swipe on the same question sees the advanced cursor.
// The swipe that answers the last question scores the session.
func (s *sessionService) RecordResponse(ctx context.Context, sessionID string, req *RecordResponseRequest, userID string) (*RecordResponseResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var session *models.Session
	var scored *models.TestResult

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		session, err = s.ownedSession(ctx, tx.Session().GetForUpdate, sessionID, userID, "answer")
		if err != nil {
			return err
		}
		if session.Status != models.SessionInProgress || session.IsComplete() {
			return ErrSessionCompleted
		}

		current := session.Order[session.CurrentIndex]
		if current.ID != req.QuestionID {
			return fmt.Errorf("%w: expected question %d, got %d", ErrUnexpectedQuestion, current.ID, req.QuestionID)
		}

		now := s.now()
		response := &models.SwipeResponse{
			SessionID:    session.ID,
			QuestionID:   req.QuestionID,
			Direction:    req.Direction,
			DisplayOrder: current.DisplayOrder,
			TimeSpentMs:  req.TimeSpentMs,
			CreatedAt:    now,
		}
		if err := tx.Session().AddResponse(ctx, response); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return fmt.Errorf("%w: question %d already answered", ErrUnexpectedQuestion, req.QuestionID)
			}
			return fmt.Errorf("failed to save response: %w", err)
		}

		session.CurrentIndex++
		session.QuestionsAnswered++
		session.UpdatedAt = now

		if session.IsComplete() {
			result, err := s.score(ctx, tx, session)
			if err != nil {
				return err
			}
			if err := tx.Session().SaveResult(ctx, &models.SessionResult{
				SessionID: session.ID,
				UserID:    session.UserID,
				Result:    datatypes.NewJSONType(result),
				CreatedAt: now,
			}); err != nil {
				return fmt.Errorf("failed to save result: %w", err)
			}
			session.Status = models.SessionCompleted
			session.CompletedAt = &now
			scored = &result
		}

		if err := tx.Session().Update(ctx, session); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Swipe(string(req.Direction))

	if scored != nil {
		s.metrics.SessionTransition("completed")
		s.publish(ctx, events.EventSessionCompleted, events.SessionCompletedEvent{
			SessionID: session.ID,
			UserID:    session.UserID,
			Answered:  session.QuestionsAnswered,
			Result:    *scored,
		})
		s.logger.Info("Session completed", "session_id", session.ID, "top_style", scored.TopStyle)
	}

	return &RecordResponseResult{
		Session:   toSessionResponse(session, false),
		Completed: scored != nil,
		Result:    scored,
	}, nil
}

func (s *sessionService) GetResult(ctx context.Context, sessionID, userID string) (*models.TestResult, error) {
	session, err := s.ownedSession(ctx, s.repo.Session().GetByID, sessionID, userID, "read")
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionCompleted {
		return nil, ErrSessionNotCompleted
	}

	stored, err := s.repo.Session().GetResult(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	result := stored.Result.Data()
	return &result, nil
}

// ===== HELPERS =====

type sessionLoader func(ctx context.Context, id string) (*models.Session, error)

func (s *sessionService) ownedSession(ctx context.Context, load sessionLoader, sessionID, userID, action string) (*models.Session, error) {
	session, err := load(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.UserID != userID {
		return nil, NewPermissionError(userID, sessionID, "session", action, "not owner")
	}
	return session, nil
}

// score rebuilds the swipes of a session and scores them against its questions
func (s *sessionService) score(ctx context.Context, repo repositories.Repository, session *models.Session) (models.TestResult, error) {
	responses, err := repo.Session().ListResponses(ctx, session.ID)
	if err != nil {
		return models.TestResult{}, fmt.Errorf("failed to load responses: %w", err)
	}

	ids := make([]uint, len(session.Order))
	for i, entry := range session.Order {
		ids[i] = entry.ID
	}
	questions, err := repo.Question().GetByIDs(ctx, ids)
	if err != nil {
		return models.TestResult{}, fmt.Errorf("failed to load questions: %w", err)
	}

	swipes := make([]results.Swipe, len(responses))
	for i, r := range responses {
		swipes[i] = results.Swipe{QuestionID: r.QuestionID, Direction: r.Direction}
	}
	return results.Score(derefQuestions(questions), swipes), nil
}

func (s *sessionService) publish(ctx context.Context, eventType events.EventType, data interface{}) {
	if err := s.eventPublisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event", "event_type", eventType, "error", err)
	}
}

// SessionSeed derives a stable, non-negative 32-bit ordering seed from a
// session id
func SessionSeed(sessionID string) int64 {
	return int64(uint32(xxhash.Sum64String(sessionID)))
}

func toSessionResponse(session *models.Session, withOrder bool) *SessionResponse {
	resp := &SessionResponse{
		ID:                session.ID,
		Status:            session.Status,
		Seed:              session.Seed,
		TotalQuestions:    session.TotalQuestions,
		QuestionsAnswered: session.QuestionsAnswered,
	}
	if withOrder {
		resp.Order = session.Order
	}
	return resp
}
