package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/importer"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/ordering"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/results"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateQuestionRequest = validator.QuestionCreateRequest
type OrderPreviewRequest = validator.OrderPreviewRequest
type StartSessionRequest = validator.StartSessionRequest
type RecordResponseRequest = validator.RecordResponseRequest
type ValidateResultRequest = validator.ValidateResultRequest

type QuestionListResponse struct {
	Questions []*models.Question `json:"questions"`
	Total     int64              `json:"total"`
}

// OrderingResponse is a computed plan together with the options that produced it
type OrderingResponse struct {
	ordering.Plan
	Options ordering.Options `json:"options"`
	Cached  bool             `json:"cached"`
}

// QuestionView is what a respondent sees; scoring fields stay hidden
type QuestionView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type SessionResponse struct {
	ID                string                 `json:"id"`
	Status            models.SessionStatus   `json:"status"`
	Seed              int64                  `json:"seed"`
	TotalQuestions    int                    `json:"total_questions"`
	QuestionsAnswered int                    `json:"questions_answered"`
	Order             []models.QuestionOrder `json:"order,omitempty"`
}

type NextQuestionResponse struct {
	SessionID      string       `json:"session_id"`
	DisplayOrder   int          `json:"display_order"`
	TotalQuestions int          `json:"total_questions"`
	Question       QuestionView `json:"question"`
}

type RecordResponseResult struct {
	Session   *SessionResponse   `json:"session"`
	Completed bool               `json:"completed"`
	Result    *models.TestResult `json:"result,omitempty"`
}

type ImportResult struct {
	Imported  int                 `json:"imported"`
	RowErrors []importer.RowError `json:"row_errors"`
}

// ===== SERVICE INTERFACES =====

type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*models.Question, error)
	CreateBatch(ctx context.Context, reqs []*CreateQuestionRequest, creatorID string) ([]*models.Question, error)
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	List(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error)
	Delete(ctx context.Context, id uint, userID string) error
}

type OrderingService interface {
	// Preview sequences inline questions or stored ones by id
	Preview(ctx context.Context, req *OrderPreviewRequest) (*OrderingResponse, error)
	ValidateResult(ctx context.Context, req *ValidateResultRequest) (*results.Report, error)
}

type SessionService interface {
	Start(ctx context.Context, req *StartSessionRequest, userID string) (*SessionResponse, error)
	Get(ctx context.Context, sessionID, userID string) (*SessionResponse, error)
	Next(ctx context.Context, sessionID, userID string) (*NextQuestionResponse, error)
	RecordResponse(ctx context.Context, sessionID string, req *RecordResponseRequest, userID string) (*RecordResponseResult, error)
	GetResult(ctx context.Context, sessionID, userID string) (*models.TestResult, error)
}

type ImportExportService interface {
	ImportQuestions(ctx context.Context, r io.Reader, creatorID string) (*ImportResult, error)
	ExportOrdering(ctx context.Context, req *OrderPreviewRequest, w io.Writer) error
}

// ServiceManager interface for managing all services
type ServiceManager interface {
	Question() QuestionService
	Ordering() OrderingService
	Session() SessionService
	ImportExport() ImportExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
