package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/config"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/importer"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/metrics"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/ordering"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/results"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/services"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeServiceManager, *metrics.Metrics) {
	t.Helper()
	sm := newFakeServiceManager()
	m := metrics.New()

	router := gin.New()
	SetupMiddleware(router, testLogger())
	NewHandlerManager(sm, testLogger(), config.CasdoorConfig{}, nil, m).SetupRoutes(router)
	return router, sm, m
}

func doJSON(router *gin.Engine, method, path string, body interface{}, userID string, role models.UserRole) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
		req.Header.Set("X-User-Role", string(role))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func questionPayload() map[string]interface{} {
	return map[string]interface{}{
		"text":      "I like plans",
		"framework": "connection",
		"category":  "driver",
		"weight":    map[string]float64{"up": 2, "right": 1, "left": -1, "down": -2},
	}
}

func TestRouter_RequiresUser(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/sessions", nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_QuestionWritesNeedAuthorRole(t *testing.T) {
	router, sm, _ := newTestRouter(t)

	tests := []struct {
		role models.UserRole
		want int
	}{
		{models.RoleRespondent, http.StatusForbidden},
		{"", http.StatusForbidden},
		{models.RoleAuthor, http.StatusCreated},
		{models.RoleAdmin, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("role=%q", tt.role), func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/v1/questions", questionPayload(), "user-1", tt.role)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	require.NotNil(t, sm.question.created)
	assert.Equal(t, models.FrameworkConnection, sm.question.created.Framework)
}

func TestQuestionHandler_ValidationErrors(t *testing.T) {
	router, sm, _ := newTestRouter(t)
	sm.question.err = validator.ValidationErrors{{Field: "category", Message: "is required", Rule: "required"}}

	w := doJSON(router, http.MethodPost, "/api/v1/questions", questionPayload(), "user-1", models.RoleAuthor)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Message string                     `json:"message"`
		Details validator.ValidationErrors `json:"details"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "Validation failed", resp.Message)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "category", resp.Details[0].Field)
}

func TestQuestionHandler_BatchAndList(t *testing.T) {
	router, sm, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/questions/batch", map[string]interface{}{
		"questions": []interface{}{questionPayload(), questionPayload()},
	}, "user-1", models.RoleAuthor)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, sm.question.batch, 2)

	w = doJSON(router, http.MethodPost, "/api/v1/questions/batch", map[string]interface{}{"questions": []interface{}{}}, "user-1", models.RoleAuthor)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/questions?framework=enneagram&tag=warmup&limit=5&offset=10", nil, "user-1", models.RoleAuthor)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, sm.question.filters.Framework)
	assert.Equal(t, models.FrameworkEnneagram, *sm.question.filters.Framework)
	assert.Equal(t, "warmup", sm.question.filters.Tag)
	assert.Equal(t, 5, sm.question.filters.Limit)
	assert.Equal(t, 10, sm.question.filters.Offset)

	w = doJSON(router, http.MethodGet, "/api/v1/questions?framework=astrology", nil, "user-1", models.RoleAuthor)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuestionHandler_GetAndDelete(t *testing.T) {
	router, sm, _ := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1/questions/abc", nil, "user-1", models.RoleAuthor)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/v1/questions/7", nil, "user-1", models.RoleAdmin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(7), sm.question.deleted)

	sm.question.err = services.ErrQuestionNotFound
	w = doJSON(router, http.MethodGet, "/api/v1/questions/9", nil, "user-1", models.RoleAuthor)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuestionHandler_Import(t *testing.T) {
	router, sm, _ := newTestRouter(t)
	sm.importExport.result = &services.ImportResult{Imported: 2, RowErrors: []importer.RowError{{Row: 4, Message: "bad"}}}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "questions.xlsx")
	require.NoError(t, err)
	_, err = part.Write([]byte("workbook-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	payload := append([]byte(nil), body.Bytes()...)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/questions/import", bytes.NewReader(payload))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("X-User-Role", "author")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "workbook-bytes", string(sm.importExport.imported))

	var resp services.ImportResult
	decode(t, w, &resp)
	assert.Equal(t, 2, resp.Imported)
	assert.Equal(t, 4, resp.RowErrors[0].Row)

	sm.importExport.err = fmt.Errorf("%w: zip: not a valid zip file", importer.ErrInvalidWorkbook)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/questions/import", bytes.NewReader(payload))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("X-User-Role", "author")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderingHandler_Preview(t *testing.T) {
	router, sm, _ := newTestRouter(t)
	sm.ordering.resp = &services.OrderingResponse{
		Plan:    ordering.Plan{Orders: []models.QuestionOrder{{ID: 2, DisplayOrder: 1}, {ID: 1, DisplayOrder: 2}}},
		Options: ordering.DefaultOptions(),
	}

	w := doJSON(router, http.MethodPost, "/api/v1/orderings/preview", map[string]interface{}{
		"question_ids": []uint{1, 2},
		"options":      map[string]interface{}{"seed": 7},
	}, "user-1", models.RoleAuthor)
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, sm.ordering.preview.Options.Seed)
	assert.Equal(t, int64(7), *sm.ordering.preview.Options.Seed)

	var resp services.OrderingResponse
	decode(t, w, &resp)
	assert.Equal(t, uint(2), resp.Orders[0].ID)
	assert.Equal(t, ordering.DefaultSeed, resp.Options.Seed)

	w = doJSON(router, http.MethodPost, "/api/v1/orderings/preview", map[string]interface{}{}, "user-1", models.RoleRespondent)
	assert.Equal(t, http.StatusForbidden, w.Code)

	sm.ordering.err = fmt.Errorf("%w: [9]", services.ErrUnknownQuestions)
	w = doJSON(router, http.MethodPost, "/api/v1/orderings/preview", map[string]interface{}{"question_ids": []uint{9}}, "user-1", models.RoleAuthor)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestOrderingHandler_Export(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/orderings/export", map[string]interface{}{"question_ids": []uint{1}}, "user-1", models.RoleAuthor)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxMediaType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=\"ordering-")
	assert.Equal(t, "PK-workbook", w.Body.String())
}

func TestOrderingHandler_ValidateResult(t *testing.T) {
	router, sm, _ := newTestRouter(t)
	sm.ordering.report = &results.Report{Pass: false, Errors: []string{`topStyle mismatch: got "driver", expected "harmonizer"`}}

	w := doJSON(router, http.MethodPost, "/api/v1/results/validate", map[string]interface{}{
		"actual":   map[string]interface{}{"top_style": "driver"},
		"expected": map[string]interface{}{"top_style": "harmonizer"},
	}, "user-1", models.RoleRespondent)
	require.Equal(t, http.StatusOK, w.Code)

	var report results.Report
	decode(t, w, &report)
	assert.False(t, report.Pass)
	assert.Len(t, report.Errors, 1)
}

func TestSessionHandler_Flow(t *testing.T) {
	router, sm, _ := newTestRouter(t)

	// empty body uses defaults
	w := doJSON(router, http.MethodPost, "/api/v1/sessions", nil, "user-1", models.RoleRespondent)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-1", sm.session.userID)
	assert.Nil(t, sm.session.started.Framework)

	w = doJSON(router, http.MethodPost, "/api/v1/sessions", map[string]interface{}{"framework": "enneagram"}, "user-1", models.RoleRespondent)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, sm.session.started.Framework)
	assert.Equal(t, models.FrameworkEnneagram, *sm.session.started.Framework)

	w = doJSON(router, http.MethodGet, "/api/v1/sessions/s-1/next", nil, "user-1", models.RoleRespondent)
	require.Equal(t, http.StatusOK, w.Code)
	var next services.NextQuestionResponse
	decode(t, w, &next)
	assert.Equal(t, uint(3), next.Question.ID)
	assert.NotContains(t, w.Body.String(), "weight")

	w = doJSON(router, http.MethodPost, "/api/v1/sessions/s-1/responses", map[string]interface{}{"question_id": 3, "direction": "up"}, "user-1", models.RoleRespondent)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/sessions/s-1/result", nil, "user-1", models.RoleRespondent)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"top_style":"driver"`)
}

func TestSessionHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrSessionNotFound, http.StatusNotFound},
		{services.ErrSessionCompleted, http.StatusConflict},
		{services.ErrSessionNotCompleted, http.StatusConflict},
		{fmt.Errorf("%w: expected question 3, got 4", services.ErrUnexpectedQuestion), http.StatusConflict},
		{services.ErrNoQuestions, http.StatusUnprocessableEntity},
		{services.NewPermissionError("user-2", "s-1", "session", "read", "not owner"), http.StatusForbidden},
		{errors.New("database unavailable"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			router, sm, _ := newTestRouter(t)
			sm.session.err = tt.err

			w := doJSON(router, http.MethodGet, "/api/v1/sessions/s-1", nil, "user-2", models.RoleRespondent)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	router, sm, m := newTestRouter(t)
	m.Validation(true)

	w := doJSON(router, http.MethodGet, "/health", nil, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	sm.healthErr = errors.New("repository health check failed")
	w = doJSON(router, http.MethodGet, "/health", nil, "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doJSON(router, http.MethodGet, "/metrics", nil, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swipe_quiz_result_validations_total")
}

type fakeTokenParser struct {
	claims *casdoorsdk.Claims
	err    error
}

func (f fakeTokenParser) ParseJwtToken(string) (*casdoorsdk.Claims, error) {
	return f.claims, f.err
}

func TestCasdoorAuthMiddleware(t *testing.T) {
	claims := &casdoorsdk.Claims{User: casdoorsdk.User{Id: "u-42", DisplayName: "Ada", Type: "editor"}}

	tests := []struct {
		name   string
		header string
		parser fakeTokenParser
		want   int
	}{
		{"missing header", "", fakeTokenParser{claims: claims}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fakeTokenParser{claims: claims}, http.StatusUnauthorized},
		{"invalid token", "Bearer abc", fakeTokenParser{err: errors.New("bad signature")}, http.StatusUnauthorized},
		{"no user id", "Bearer abc", fakeTokenParser{claims: &casdoorsdk.Claims{}}, http.StatusUnauthorized},
		{"valid", "Bearer abc", fakeTokenParser{claims: claims}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := &CasdoorAuthMiddleware{client: tt.parser}

			router := gin.New()
			router.GET("/me", cam.AuthMiddleware(), RequireRoleMiddleware(models.RoleAuthor), func(c *gin.Context) {
				user, err := GetUserFromContext(c)
				require.NoError(t, err)
				c.JSON(http.StatusOK, user)
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.True(t, strings.Contains(w.Body.String(), `"id":"u-42"`))
				assert.Contains(t, w.Body.String(), `"role":"author"`)
			}
		})
	}
}

func TestMiddleware_PreflightAndRequestID(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sessions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
