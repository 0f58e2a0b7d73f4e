package handlers

import (
	"context"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/results"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/services"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/utils"
)

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeQuestionService struct {
	created  *services.CreateQuestionRequest
	batch    []*services.CreateQuestionRequest
	filters  repositories.QuestionFilters
	deleted  uint
	err      error
	question *models.Question
}

func (f *fakeQuestionService) Create(_ context.Context, req *services.CreateQuestionRequest, creatorID string) (*models.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = req
	return &models.Question{ID: 1, Text: req.Text, Framework: req.Framework, CreatedBy: creatorID}, nil
}

func (f *fakeQuestionService) CreateBatch(_ context.Context, reqs []*services.CreateQuestionRequest, _ string) ([]*models.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batch = reqs
	out := make([]*models.Question, len(reqs))
	for i := range reqs {
		out[i] = &models.Question{ID: uint(i + 1)}
	}
	return out, nil
}

func (f *fakeQuestionService) GetByID(_ context.Context, id uint) (*models.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Question{ID: id}, nil
}

func (f *fakeQuestionService) List(_ context.Context, filters repositories.QuestionFilters) (*services.QuestionListResponse, error) {
	f.filters = filters
	return &services.QuestionListResponse{Questions: []*models.Question{}, Total: 0}, f.err
}

func (f *fakeQuestionService) Delete(_ context.Context, id uint, _ string) error {
	f.deleted = id
	return f.err
}

type fakeOrderingService struct {
	preview *services.OrderPreviewRequest
	resp    *services.OrderingResponse
	report  *results.Report
	err     error
}

func (f *fakeOrderingService) Preview(_ context.Context, req *services.OrderPreviewRequest) (*services.OrderingResponse, error) {
	f.preview = req
	return f.resp, f.err
}

func (f *fakeOrderingService) ValidateResult(_ context.Context, _ *services.ValidateResultRequest) (*results.Report, error) {
	return f.report, f.err
}

type fakeSessionService struct {
	userID  string
	started *services.StartSessionRequest
	err     error
}

func (f *fakeSessionService) Start(_ context.Context, req *services.StartSessionRequest, userID string) (*services.SessionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.started = req
	f.userID = userID
	return &services.SessionResponse{ID: "s-1", Status: models.SessionInProgress, Seed: 42, TotalQuestions: 8}, nil
}

func (f *fakeSessionService) Get(_ context.Context, sessionID, userID string) (*services.SessionResponse, error) {
	f.userID = userID
	if f.err != nil {
		return nil, f.err
	}
	return &services.SessionResponse{ID: sessionID}, nil
}

func (f *fakeSessionService) Next(_ context.Context, sessionID, _ string) (*services.NextQuestionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.NextQuestionResponse{SessionID: sessionID, DisplayOrder: 1, TotalQuestions: 8, Question: services.QuestionView{ID: 3, Text: "q3"}}, nil
}

func (f *fakeSessionService) RecordResponse(_ context.Context, sessionID string, _ *services.RecordResponseRequest, _ string) (*services.RecordResponseResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.RecordResponseResult{Session: &services.SessionResponse{ID: sessionID, QuestionsAnswered: 1}}, nil
}

func (f *fakeSessionService) GetResult(_ context.Context, _, _ string) (*models.TestResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.TestResult{TopStyle: "driver"}, nil
}

type fakeImportExportService struct {
	imported []byte
	result   *services.ImportResult
	err      error
}

func (f *fakeImportExportService) ImportQuestions(_ context.Context, r io.Reader, _ string) (*services.ImportResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.imported, _ = io.ReadAll(r)
	return f.result, nil
}

func (f *fakeImportExportService) ExportOrdering(_ context.Context, _ *services.OrderPreviewRequest, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := w.Write([]byte("PK-workbook"))
	return err
}

type fakeServiceManager struct {
	question     *fakeQuestionService
	ordering     *fakeOrderingService
	session      *fakeSessionService
	importExport *fakeImportExportService
	healthErr    error
}

func newFakeServiceManager() *fakeServiceManager {
	return &fakeServiceManager{
		question:     &fakeQuestionService{},
		ordering:     &fakeOrderingService{},
		session:      &fakeSessionService{},
		importExport: &fakeImportExportService{},
	}
}

func (f *fakeServiceManager) Question() services.QuestionService         { return f.question }
func (f *fakeServiceManager) Ordering() services.OrderingService         { return f.ordering }
func (f *fakeServiceManager) Session() services.SessionService           { return f.session }
func (f *fakeServiceManager) ImportExport() services.ImportExportService { return f.importExport }
func (f *fakeServiceManager) Initialize(context.Context) error           { return nil }
func (f *fakeServiceManager) HealthCheck(context.Context) error          { return f.healthErr }
func (f *fakeServiceManager) Shutdown(context.Context) error             { return nil }
