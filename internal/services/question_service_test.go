package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/validator"
)

func newQuestionServiceForTest() (QuestionService, *memRepo) {
	repo := newMemRepo()
	return NewQuestionService(repo, testLogger(), validator.New()), repo
}

func validCreateRequest(category string) *CreateQuestionRequest {
	return &CreateQuestionRequest{
		Text:      "I enjoy leading group projects",
		Framework: models.FrameworkConnection,
		Category:  category,
		Weight:    fullWeight(),
		Tags:      []string{models.TagWarmup},
	}
}

func TestQuestionService_Create(t *testing.T) {
	svc, repo := newQuestionServiceForTest()
	ctx := context.Background()

	question, err := svc.Create(ctx, validCreateRequest("driver"), "author-1")
	require.NoError(t, err)
	assert.NotZero(t, question.ID)
	assert.True(t, question.Active)
	assert.Equal(t, "author-1", question.CreatedBy)

	stored, err := repo.Question().GetByID(ctx, question.ID)
	require.NoError(t, err)
	assert.Equal(t, "driver", stored.Category)
}

func TestQuestionService_CreateRejectsInvalid(t *testing.T) {
	svc, repo := newQuestionServiceForTest()

	req := validCreateRequest("driver")
	req.Framework = "astrology"
	delete(req.Weight, models.SwipeDown)

	_, err := svc.Create(context.Background(), req, "author-1")

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
	assert.Empty(t, repo.s.questions)
}

func TestQuestionService_CreateBatchIsAllOrNothing(t *testing.T) {
	svc, repo := newQuestionServiceForTest()

	bad := validCreateRequest("")
	_, err := svc.CreateBatch(context.Background(), []*CreateQuestionRequest{validCreateRequest("driver"), bad}, "author-1")

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Contains(t, verrs[0].Field, "questions[1].")
	assert.Empty(t, repo.s.questions)

	created, err := svc.CreateBatch(context.Background(), []*CreateQuestionRequest{validCreateRequest("driver"), validCreateRequest("harmonizer")}, "author-1")
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.NotEqual(t, created[0].ID, created[1].ID)
}

func TestQuestionService_CreateBatchRepositoryError(t *testing.T) {
	svc, repo := newQuestionServiceForTest()
	repo.s.failCreate = errors.New("disk full")

	_, err := svc.CreateBatch(context.Background(), []*CreateQuestionRequest{validCreateRequest("driver")}, "author-1")
	assert.ErrorContains(t, err, "disk full")
}

func TestQuestionService_GetByIDNotFound(t *testing.T) {
	svc, _ := newQuestionServiceForTest()

	_, err := svc.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestQuestionService_ListClampsPaging(t *testing.T) {
	svc, repo := newQuestionServiceForTest()
	repo.seed(loadSample(t).Questions...)

	tests := []struct {
		name       string
		in         repositories.QuestionFilters
		wantLimit  int
		wantOffset int
	}{
		{"defaults", repositories.QuestionFilters{}, defaultListLimit, 0},
		{"too large", repositories.QuestionFilters{Limit: 10_000}, maxListLimit, 0},
		{"negative offset", repositories.QuestionFilters{Limit: 3, Offset: -5}, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.List(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, int64(8), resp.Total)
			assert.Equal(t, tt.wantLimit, repo.s.lastFilters.Limit)
			assert.Equal(t, tt.wantOffset, repo.s.lastFilters.Offset)
		})
	}
}

func TestQuestionService_Delete(t *testing.T) {
	svc, repo := newQuestionServiceForTest()
	repo.seed(loadSample(t).Questions...)

	require.NoError(t, svc.Delete(context.Background(), 3, "admin"))
	assert.ErrorIs(t, svc.Delete(context.Background(), 3, "admin"), ErrQuestionNotFound)
}
