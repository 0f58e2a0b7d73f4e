package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/cache"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/metrics"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/ordering"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/results"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/validator"
)

// OrderingConfig holds the defaults applied beneath per-request overrides
type OrderingConfig struct {
	Defaults ordering.Options
	CacheTTL time.Duration
}

type orderingService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	metrics   *metrics.Metrics
	logger    *slog.Logger
	validator *validator.Validator
	config    OrderingConfig
}

func NewOrderingService(repo repositories.Repository, cacheManager *cache.CacheManager, m *metrics.Metrics, logger *slog.Logger, validator *validator.Validator, config OrderingConfig) OrderingService {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = cache.OrderingPolicy.TTL
	}
	return &orderingService{
		repo:      repo,
		cache:     cacheManager,
		metrics:   m,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

func (s *orderingService) Preview(ctx context.Context, req *OrderPreviewRequest) (*OrderingResponse, error) {
	if errs := s.validator.ValidateOrderPreview(req); len(errs) > 0 {
		return nil, errs
	}

	questions, err := s.resolveQuestions(ctx, req)
	if err != nil {
		return nil, err
	}

	opts := req.Options.Apply(s.config.Defaults)
	plan, cached, err := s.sequence(ctx, questions, opts)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Ordering preview computed",
		"questions", len(questions),
		"seed", opts.Seed,
		"cached", cached,
		"deferred", plan.Deferred,
		"longest_run", plan.LongestRun)

	return &OrderingResponse{Plan: plan, Options: opts, Cached: cached}, nil
}

// sequence computes a plan through the content-keyed ordering cache
func (s *orderingService) sequence(ctx context.Context, questions []models.Question, opts ordering.Options) (ordering.Plan, bool, error) {
	store := s.cache.Ordering.WithTTL(s.config.CacheTTL)
	plan, hit, err := cache.Remember(ctx, store, cache.OrderingKey(questions, opts), func() (ordering.Plan, error) {
		start := time.Now()
		computed := ordering.Sequence(questions, opts)
		s.metrics.OrderingComputed(time.Since(start), computed.Deferred, computed.Flushed, computed.LongestRun)
		return computed, nil
	})
	if err != nil {
		return ordering.Plan{}, false, fmt.Errorf("failed to compute ordering: %w", err)
	}
	if hit {
		s.metrics.OrderingCacheHit()
	}
	return plan, hit, nil
}

// resolveQuestions returns the inline questions, or loads stored ones in the
// requested order. Repeated ids are kept once.
func (s *orderingService) resolveQuestions(ctx context.Context, req *OrderPreviewRequest) ([]models.Question, error) {
	if len(req.Questions) > 0 {
		questions := make([]models.Question, len(req.Questions))
		for i, q := range req.Questions {
			questions[i] = q.ToModel()
		}
		return questions, nil
	}

	ids := uniqueIDs(req.QuestionIDs)
	found, err := s.repo.Question().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	if len(found) != len(ids) {
		return nil, fmt.Errorf("%w: %v", ErrUnknownQuestions, missingIDs(ids, found))
	}
	return derefQuestions(found), nil
}

func (s *orderingService) ValidateResult(ctx context.Context, req *ValidateResultRequest) (*results.Report, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var opts []results.Option
	if req.Epsilon != nil {
		opts = append(opts, results.WithEpsilon(*req.Epsilon))
	}

	report := results.ValidateTestResult(req.Actual, req.Expected, opts...)
	s.metrics.Validation(report.Pass)

	if !report.Pass {
		s.logger.InfoContext(ctx, "Result validation failed", "errors", len(report.Errors))
	}
	return &report, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func missingIDs(ids []uint, found []*models.Question) []uint {
	present := make(map[uint]bool, len(found))
	for _, q := range found {
		present[q.ID] = true
	}
	var missing []uint
	for _, id := range ids {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

func derefQuestions(questions []*models.Question) []models.Question {
	out := make([]models.Question, len(questions))
	for i, q := range questions {
		out[i] = *q
	}
	return out
}
