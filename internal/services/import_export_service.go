package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/events"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/importer"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/validator"
)

type importExportService struct {
	repo           repositories.Repository
	ordering       OrderingService
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewImportExportService(repo repositories.Repository, ordering OrderingService, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ImportExportService {
	if publisher == nil {
		publisher = events.NoopEventPublisher{}
	}
	return &importExportService{
		repo:           repo,
		ordering:       ordering,
		eventPublisher: publisher,
		logger:         logger,
		validator:      validator,
	}
}

// ImportQuestions creates every valid row of the workbook in one batch.
// Rows that fail parsing or validation are returned instead of imported.
func (s *importExportService) ImportQuestions(ctx context.Context, r io.Reader, creatorID string) (*ImportResult, error) {
	rows, rowErrors, err := importer.ReadQuestions(r)
	if err != nil {
		return nil, err
	}

	questions := make([]*models.Question, 0, len(rows))
	for _, row := range rows {
		if errs := s.validator.ValidateQuestionCreate(&row.Question); len(errs) > 0 {
			rowErrors = append(rowErrors, importer.RowError{Row: row.Row, Message: errs.Error()})
			continue
		}
		questions = append(questions, row.Question.ToModel(creatorID))
	}

	result := &ImportResult{RowErrors: rowErrors}
	if len(questions) == 0 {
		s.logger.Info("Import finished with no valid rows", "creator_id", creatorID, "row_errors", len(rowErrors))
		return result, nil
	}

	if err := s.repo.Question().CreateBatch(ctx, questions); err != nil {
		return nil, fmt.Errorf("failed to import questions: %w", err)
	}
	result.Imported = len(questions)

	event := events.NewEvent(events.EventQuestionsImported, events.QuestionsImportedEvent{
		ImportedBy: creatorID,
		Count:      result.Imported,
	})
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish import event", "error", err)
	}

	s.logger.Info("Questions imported", "creator_id", creatorID, "imported", result.Imported, "row_errors", len(rowErrors))
	return result, nil
}

// ExportOrdering previews an ordering and writes it as a workbook
func (s *importExportService) ExportOrdering(ctx context.Context, req *OrderPreviewRequest, w io.Writer) error {
	resp, err := s.ordering.Preview(ctx, req)
	if err != nil {
		return err
	}

	var questions []models.Question
	if len(req.QuestionIDs) > 0 {
		found, err := s.repo.Question().GetByIDs(ctx, uniqueIDs(req.QuestionIDs))
		if err != nil {
			return fmt.Errorf("failed to load questions: %w", err)
		}
		questions = derefQuestions(found)
	} else {
		questions = make([]models.Question, len(req.Questions))
		for i, q := range req.Questions {
			questions[i] = q.ToModel()
		}
	}

	if err := importer.WriteOrdering(w, resp.Plan, resp.Options, questions); err != nil {
		return fmt.Errorf("failed to write ordering: %w", err)
	}
	return nil
}
