package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
)

const maxTagLength = 50

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateQuestionCreate validates question creation business rules
func (bv *BusinessValidator) ValidateQuestionCreate(req *QuestionCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, validateTags("tags", req.Tags)...)

	return errors
}

// ValidateOrderPreview validates an ordering preview request. Inline
// questions must carry unique ids so the result can cover each exactly once.
func (bv *BusinessValidator) ValidateOrderPreview(req *OrderPreviewRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if len(req.Questions) == 0 && len(req.QuestionIDs) == 0 {
		errors = append(errors, ValidationError{
			Field:   "questions",
			Message: "either questions or question_ids must be provided",
			Rule:    "business_logic",
		})
	}
	if len(req.Questions) > 0 && len(req.QuestionIDs) > 0 {
		errors = append(errors, ValidationError{
			Field:   "question_ids",
			Message: "cannot be combined with inline questions",
			Rule:    "business_logic",
		})
	}

	seen := make(map[uint]bool, len(req.Questions))
	for i, q := range req.Questions {
		if seen[q.ID] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("questions[%d].id", i),
				Message: "duplicate question id",
				Value:   q.ID,
				Rule:    "business_logic",
			})
		}
		seen[q.ID] = true
		errors = append(errors, validateTags(fmt.Sprintf("questions[%d].tags", i), q.Tags)...)
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("framework", func(fl validator.FieldLevel) bool {
		return models.Framework(fl.Field().String()).IsValid()
	})

	bv.validate.RegisterValidation("swipe_direction", func(fl validator.FieldLevel) bool {
		return models.SwipeDirection(fl.Field().String()).IsValid()
	})

	// Weight maps need exactly one entry per swipe direction
	bv.validate.RegisterValidation("weight_map", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.Map || field.Len() != len(models.SwipeDirections) {
			return false
		}
		for _, key := range field.MapKeys() {
			if !models.SwipeDirection(key.String()).IsValid() {
				return false
			}
		}
		return true
	})

	bv.validate.RegisterValidation("question_tag", func(fl validator.FieldLevel) bool {
		tag := strings.TrimSpace(fl.Field().String())
		return tag != "" && len(tag) <= maxTagLength
	})
}

func validateTags(field string, tags []string) ValidationErrors {
	var errors ValidationErrors

	seen := make(map[string]bool, len(tags))
	for i, tag := range tags {
		if seen[tag] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "duplicate tag",
				Value:   tag,
				Rule:    "business_logic",
			})
		}
		seen[tag] = true
	}

	return errors
}
