package validator

import (
	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/ordering"
)

// QuestionCreateRequest represents the request structure for creating questions
type QuestionCreateRequest struct {
	Text      string                            `json:"text" validate:"required,min=1,max=2000"`
	Framework models.Framework                  `json:"framework" validate:"required,framework"`
	Category  string                            `json:"category" validate:"required,max=64"`
	Reverse   bool                              `json:"reverse"`
	Weight    map[models.SwipeDirection]float64 `json:"weight" validate:"required,weight_map"`
	Tags      []string                          `json:"tags" validate:"omitempty,max=10,dive,question_tag"`
}

// ToModel builds the persisted question from the request
func (r *QuestionCreateRequest) ToModel(createdBy string) *models.Question {
	return &models.Question{
		Text:      r.Text,
		Framework: r.Framework,
		Category:  r.Category,
		Reverse:   r.Reverse,
		Weight:    r.Weight,
		Tags:      r.Tags,
		Active:    true,
		CreatedBy: createdBy,
	}
}

// InlineQuestion is a question supplied directly in a preview request
type InlineQuestion struct {
	ID        uint             `json:"id" validate:"required"`
	Framework models.Framework `json:"framework" validate:"required,framework"`
	Category  string           `json:"category"`
	Tags      []string         `json:"tags" validate:"omitempty,max=10,dive,question_tag"`
}

func (q InlineQuestion) ToModel() models.Question {
	return models.Question{
		ID:        q.ID,
		Framework: q.Framework,
		Category:  q.Category,
		Tags:      q.Tags,
	}
}

// OrderPreviewRequest orders either inline questions or stored question ids
type OrderPreviewRequest struct {
	Questions   []InlineQuestion   `json:"questions" validate:"omitempty,max=500,dive"`
	QuestionIDs []uint             `json:"question_ids" validate:"omitempty,max=500,dive,required"`
	Options     ordering.Overrides `json:"options"`
}

// StartSessionRequest starts a swipe session over the active question set
type StartSessionRequest struct {
	Framework *models.Framework  `json:"framework" validate:"omitempty,framework"`
	Options   ordering.Overrides `json:"options"`
}

// RecordResponseRequest records a swipe on the current question
type RecordResponseRequest struct {
	QuestionID  uint                  `json:"question_id" validate:"required"`
	Direction   models.SwipeDirection `json:"direction" validate:"required,swipe_direction"`
	TimeSpentMs int                   `json:"time_spent_ms" validate:"min=0"`
}

// ValidateResultRequest compares a computed result with an expected fixture
type ValidateResultRequest struct {
	Actual   models.TestResult     `json:"actual"`
	Expected models.ExpectedResult `json:"expected"`
	Epsilon  *float64              `json:"epsilon" validate:"omitempty,gt=0,lt=1"`
}
