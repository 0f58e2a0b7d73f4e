package repositories

import (
	"errors"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
)

// ErrNotFound is returned (wrapped) when a lookup matches no record
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned (wrapped) when a write hits a unique key
var ErrDuplicate = errors.New("duplicate record")

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Framework *models.Framework `json:"framework" form:"framework"`
	Category  *string           `json:"category" form:"category"`
	Tag       string            `json:"tag" form:"tag"`
	Active    *bool             `json:"active" form:"active"`
	CreatedBy *string           `json:"created_by" form:"created_by"`
	Limit     int               `json:"limit" form:"limit"`
	Offset    int               `json:"offset" form:"offset"`
	SortBy    string            `json:"sort_by" form:"sort_by"`       // "id", "created_at", "category"
	SortOrder string            `json:"sort_order" form:"sort_order"` // "asc", "desc"
}

type SessionFilters struct {
	Status *models.SessionStatus `json:"status" form:"status"`
	Limit  int                   `json:"limit" form:"limit"`
	Offset int                   `json:"offset" form:"offset"`
}
