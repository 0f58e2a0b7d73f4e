package services

import (
	"errors"
	"fmt"
)

var (
	ErrQuestionNotFound    = errors.New("question not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionCompleted    = errors.New("session already completed")
	ErrSessionNotCompleted = errors.New("session not completed yet")
	ErrResultNotFound      = errors.New("session result not found")
	ErrUnexpectedQuestion  = errors.New("response does not match the current question")
	ErrNoQuestions         = errors.New("no active questions available")
	ErrUnknownQuestions    = errors.New("unknown question ids")
)

// PermissionError reports an action the user is not allowed to take
type PermissionError struct {
	UserID     string
	ResourceID string
	Resource   string
	Action     string
	Reason     string
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %s: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
