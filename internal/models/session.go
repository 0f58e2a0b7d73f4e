package models

import (
	"time"

	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// Session is one pass of a user through an ordered question set.
type Session struct {
	ID     string        `json:"id" gorm:"primaryKey;size:36"`
	UserID string        `json:"user_id" gorm:"not null;index;size:255"`
	Status SessionStatus `json:"status" gorm:"default:in_progress;index;size:20"`

	// Ordering inputs kept so the sequence can be recomputed and audited
	Seed        int64 `json:"seed"`
	MaxRun      int   `json:"max_run"`
	WarmupCount int   `json:"warmup_count"`
	FinaleCount int   `json:"finale_count"`

	Order datatypes.JSONSlice[QuestionOrder] `json:"order" gorm:"type:jsonb"`

	// Progress tracking
	CurrentIndex      int `json:"current_index"`
	QuestionsAnswered int `json:"questions_answered"`
	TotalQuestions    int `json:"total_questions"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Responses []SwipeResponse `json:"responses,omitempty" gorm:"foreignKey:SessionID"`
}

func (Session) TableName() string {
	return "sessions"
}

// IsComplete reports whether every question in the order has been answered.
func (s *Session) IsComplete() bool {
	return s.CurrentIndex >= len(s.Order)
}

// SwipeResponse records a single swipe on a question within a session.
type SwipeResponse struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	SessionID    string         `json:"session_id" gorm:"not null;uniqueIndex:idx_session_question;size:36"`
	QuestionID   uint           `json:"question_id" gorm:"not null;uniqueIndex:idx_session_question;index"`
	Direction    SwipeDirection `json:"direction" gorm:"not null;size:8"`
	DisplayOrder int            `json:"display_order"`
	TimeSpentMs  int            `json:"time_spent_ms"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (SwipeResponse) TableName() string {
	return "swipe_responses"
}

// SessionResult stores the scored outcome of a completed session.
type SessionResult struct {
	SessionID string                         `json:"session_id" gorm:"primaryKey;size:36"`
	UserID    string                         `json:"user_id" gorm:"not null;index;size:255"`
	Result    datatypes.JSONType[TestResult] `json:"result" gorm:"type:jsonb"`
	CreatedAt time.Time                      `json:"created_at"`
}

func (SessionResult) TableName() string {
	return "session_results"
}
