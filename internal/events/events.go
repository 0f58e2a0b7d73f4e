package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
)

const (
	EventSource  = "swipe-quiz-service"
	EventVersion = "1.0"
)

type EventType string

const (
	EventSessionStarted    EventType = "session.started"
	EventSessionCompleted  EventType = "session.completed"
	EventQuestionsImported EventType = "question.imported"
)

// Event is the envelope written to the broker. Data carries one of the
// payload types below.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type SessionStartedEvent struct {
	SessionID      string `json:"session_id"`
	UserID         string `json:"user_id"`
	Seed           int64  `json:"seed"`
	TotalQuestions int    `json:"total_questions"`
}

type SessionCompletedEvent struct {
	SessionID string            `json:"session_id"`
	UserID    string            `json:"user_id"`
	Answered  int               `json:"answered"`
	Result    models.TestResult `json:"result"`
}

type QuestionsImportedEvent struct {
	ImportedBy string `json:"imported_by"`
	Count      int    `json:"count"`
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
