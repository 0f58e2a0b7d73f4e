package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/fixtures"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/repositories"
)

// memStore is an in-memory stand-in for the postgres repositories
type memStore struct {
	// txMu serializes transactions the way the session row lock does
	txMu      sync.Mutex
	mu        sync.Mutex
	nextID    uint
	questions map[uint]*models.Question
	sessions  map[string]*models.Session
	responses map[string][]*models.SwipeResponse
	results   map[string]*models.SessionResult
	// cached holds snapshots served by GetByID in place of the stored session
	cached    map[string]*models.Session

	lastFilters repositories.QuestionFilters
	failCreate  error
	pingErr     error
	closed      bool
}

func newMemRepo() *memRepo {
	return &memRepo{s: &memStore{
		nextID:    1,
		questions: make(map[uint]*models.Question),
		sessions:  make(map[string]*models.Session),
		responses: make(map[string][]*models.SwipeResponse),
		results:   make(map[string]*models.SessionResult),
		cached:    make(map[string]*models.Session),
	}}
}

type memRepo struct{ s *memStore }

func (r *memRepo) Question() repositories.QuestionRepository { return memQuestions{r.s} }
func (r *memRepo) Session() repositories.SessionRepository   { return memSessions{r.s} }
func (r *memRepo) User() repositories.UserRepository         { return nil }

func (r *memRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	return fn(r)
}

func (r *memRepo) Ping(context.Context) error { return r.s.pingErr }

func (r *memRepo) Close() error {
	r.s.closed = true
	return nil
}

// seed stores questions keeping their ids
func (r *memRepo) seed(questions ...models.Question) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range questions {
		q := questions[i]
		q.Active = true
		r.s.questions[q.ID] = &q
		if q.ID >= r.s.nextID {
			r.s.nextID = q.ID + 1
		}
	}
}

type memQuestions struct{ s *memStore }

func (m memQuestions) Create(ctx context.Context, q *models.Question) error {
	return m.CreateBatch(ctx, []*models.Question{q})
}

func (m memQuestions) CreateBatch(_ context.Context, questions []*models.Question) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.failCreate != nil {
		return m.s.failCreate
	}
	for _, q := range questions {
		q.ID = m.s.nextID
		m.s.nextID++
		stored := *q
		m.s.questions[q.ID] = &stored
	}
	return nil
}

func (m memQuestions) GetByID(_ context.Context, id uint) (*models.Question, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	q, ok := m.s.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %d: %w", id, repositories.ErrNotFound)
	}
	out := *q
	return &out, nil
}

func (m memQuestions) Delete(_ context.Context, id uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	q, ok := m.s.questions[id]
	if !ok || !q.Active {
		return fmt.Errorf("question %d: %w", id, repositories.ErrNotFound)
	}
	q.Active = false
	return nil
}

func (m memQuestions) GetByIDs(_ context.Context, ids []uint) ([]*models.Question, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]*models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := m.s.questions[id]; ok {
			c := *q
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m memQuestions) List(_ context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	m.s.mu.Lock()
	m.s.lastFilters = filters
	m.s.mu.Unlock()

	all, _ := m.ListActive(context.Background(), filters.Framework)
	total := int64(len(all))
	if filters.Offset >= len(all) {
		return []*models.Question{}, total, nil
	}
	all = all[filters.Offset:]
	if filters.Limit < len(all) {
		all = all[:filters.Limit]
	}
	return all, total, nil
}

func (m memQuestions) ListActive(_ context.Context, framework *models.Framework) ([]*models.Question, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*models.Question
	for _, q := range m.s.questions {
		if !q.Active || (framework != nil && q.Framework != *framework) {
			continue
		}
		c := *q
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memSessions struct{ s *memStore }

func (m memSessions) Create(_ context.Context, session *models.Session) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored := *session
	m.s.sessions[session.ID] = &stored
	return nil
}

func (m memSessions) GetByID(ctx context.Context, id string) (*models.Session, error) {
	m.s.mu.Lock()
	cached, ok := m.s.cached[id]
	m.s.mu.Unlock()
	if ok {
		out := *cached
		return &out, nil
	}
	return m.GetForUpdate(ctx, id)
}

func (m memSessions) GetForUpdate(_ context.Context, id string) (*models.Session, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	session, ok := m.s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, repositories.ErrNotFound)
	}
	out := *session
	return &out, nil
}

func (m memSessions) Update(_ context.Context, session *models.Session) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored := *session
	m.s.sessions[session.ID] = &stored
	return nil
}

func (m memSessions) ListByUser(_ context.Context, userID string, _ repositories.SessionFilters) ([]*models.Session, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*models.Session
	for _, s := range m.s.sessions {
		if s.UserID == userID {
			c := *s
			out = append(out, &c)
		}
	}
	return out, int64(len(out)), nil
}

func (m memSessions) AddResponse(_ context.Context, response *models.SwipeResponse) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.responses[response.SessionID] {
		if existing.QuestionID == response.QuestionID {
			return fmt.Errorf("question %d: %w", response.QuestionID, repositories.ErrDuplicate)
		}
	}
	stored := *response
	m.s.responses[response.SessionID] = append(m.s.responses[response.SessionID], &stored)
	return nil
}

func (m memSessions) ListResponses(_ context.Context, sessionID string) ([]*models.SwipeResponse, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return append([]*models.SwipeResponse(nil), m.s.responses[sessionID]...), nil
}

func (m memSessions) SaveResult(_ context.Context, result *models.SessionResult) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored := *result
	m.s.results[result.SessionID] = &stored
	return nil
}

func (m memSessions) GetResult(_ context.Context, sessionID string) (*models.SessionResult, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	result, ok := m.s.results[sessionID]
	if !ok {
		return nil, fmt.Errorf("result %s: %w", sessionID, repositories.ErrNotFound)
	}
	out := *result
	return &out, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadSample(t *testing.T) *fixtures.Fixture {
	t.Helper()
	fixture, err := fixtures.Load(filepath.Join("..", "fixtures", "testdata", "sample.yaml"))
	require.NoError(t, err)
	return fixture
}

func ptr[T any](v T) *T { return &v }

func fullWeight() map[models.SwipeDirection]float64 {
	return map[models.SwipeDirection]float64{
		models.SwipeUp:    2,
		models.SwipeRight: 1,
		models.SwipeLeft:  -1,
		models.SwipeDown:  -2,
	}
}
