package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/cache"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/events"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/metrics"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/ordering"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	Ordering OrderingConfig

	// Sessions start from the ordering defaults unless overridden here
	SessionDefaults *ordering.Options

	DefaultTimeout time.Duration
}

// Dependencies bundles the shared infrastructure services are built on
type Dependencies struct {
	Repo      repositories.Repository
	Cache     *cache.CacheManager
	Metrics   *metrics.Metrics
	Publisher events.EventPublisher
	Logger    *slog.Logger
	Validator *validator.Validator
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   Dependencies
	config ServiceManagerConfig

	// Service instances
	questionService     QuestionService
	orderingService     OrderingService
	sessionService      SessionService
	importExportService ImportExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps Dependencies, config ServiceManagerConfig) ServiceManager {
	if deps.Publisher == nil {
		deps.Publisher = events.NoopEventPublisher{}
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewCacheManager(nil)
	}
	return &serviceManager{
		deps:   deps,
		config: config,
	}
}

// DefaultServiceManagerConfig uses the stock ordering options and cache TTL
func DefaultServiceManagerConfig() ServiceManagerConfig {
	return ServiceManagerConfig{
		Ordering: OrderingConfig{
			Defaults: ordering.DefaultOptions(),
			CacheTTL: cache.OrderingPolicy.TTL,
		},
		DefaultTimeout: 30 * time.Second,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := sm.config.Validate(); err != nil {
		return err
	}

	sm.deps.Logger.Info("Initializing service manager")

	d := sm.deps
	sm.questionService = NewQuestionService(d.Repo, d.Logger, d.Validator)
	sm.orderingService = NewOrderingService(d.Repo, d.Cache, d.Metrics, d.Logger, d.Validator, sm.config.Ordering)

	sessionDefaults := sm.config.Ordering.Defaults
	if sm.config.SessionDefaults != nil {
		sessionDefaults = *sm.config.SessionDefaults
	}
	sm.sessionService = NewSessionService(d.Repo, d.Publisher, d.Metrics, d.Logger, d.Validator, sessionDefaults)
	sm.importExportService = NewImportExportService(d.Repo, sm.orderingService, d.Publisher, d.Logger, d.Validator)

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Question() QuestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.questionService
}

func (sm *serviceManager) Ordering() OrderingService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.orderingService
}

func (sm *serviceManager) Session() SessionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.sessionService
}

func (sm *serviceManager) ImportExport() ImportExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.importExportService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	// A missing cache is tolerated; a configured but unreachable one is not
	if err := sm.deps.Cache.HealthCheck(ctx); err != nil && !errors.Is(err, cache.ErrCacheNotAvailable) {
		return fmt.Errorf("cache health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if err := sm.deps.Publisher.Close(); err != nil {
		sm.deps.Logger.Error("Failed to close event publisher", "error", err)
	}

	if err := sm.deps.Repo.Close(); err != nil {
		sm.deps.Logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")

	return nil
}

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}

// ===== CONFIGURATION VALIDATION =====

// Validate validates the service manager configuration
func (config *ServiceManagerConfig) Validate() error {
	var problems []string

	if config.DefaultTimeout < 0 {
		problems = append(problems, "default timeout cannot be negative")
	}
	if config.Ordering.CacheTTL < 0 {
		problems = append(problems, "ordering: cache TTL cannot be negative")
	}
	problems = append(problems, validateOptions("ordering", config.Ordering.Defaults)...)
	if config.SessionDefaults != nil {
		problems = append(problems, validateOptions("session", *config.SessionDefaults)...)
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %v", problems)
	}

	return nil
}

func validateOptions(name string, opts ordering.Options) []string {
	var problems []string
	if opts.WarmupCount < 0 {
		problems = append(problems, fmt.Sprintf("%s: warmup count cannot be negative", name))
	}
	if opts.FinaleCount < 0 {
		problems = append(problems, fmt.Sprintf("%s: finale count cannot be negative", name))
	}
	return problems
}
