package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/cache"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/repositories/casdoor"
)

const connectTimeout = 5 * time.Second

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB            *gorm.DB
	RedisClient   *redis.Client
	CasdoorConfig casdoor.CasdoorConfig
}

// PostgreSQLRepository serves questions and sessions from postgres, users
// from Casdoor, all behind one redis cache.
type PostgreSQLRepository struct {
	db    *gorm.DB
	redis *redis.Client
	cache *cache.CacheManager
	user  repositories.UserRepository
	hooks *commitHooks
}

func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	return &PostgreSQLRepository{
		db:    config.DB,
		redis: config.RedisClient,
		cache: cache.NewCacheManager(config.RedisClient),
		user:  casdoor.NewUserCasdoor(config.CasdoorConfig, config.RedisClient),
	}
}

func (r *PostgreSQLRepository) Question() repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: r.db, cacheManager: r.cache, hooks: r.hooks}
}

func (r *PostgreSQLRepository) Session() repositories.SessionRepository {
	return &SessionPostgreSQL{db: r.db, cacheManager: r.cache, hooks: r.hooks}
}

// User is backed by the identity provider and never joins a transaction
func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

// WithTransaction runs fn against a copy of the repository bound to one
// database transaction. Returning an error rolls it back. Cache invalidations
// issued inside fn run only after the outermost transaction commits.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	hooks, outermost := r.hooks, r.hooks == nil
	if outermost {
		hooks = &commitHooks{}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bound := *r
		bound.db = tx
		bound.hooks = hooks
		return fn(&bound)
	})
	if err != nil {
		return err
	}

	if outermost {
		hooks.flush(ctx)
	}
	return nil
}

// Ping checks the database, and redis when one is configured
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if err := r.cache.HealthCheck(ctx); err != nil && !errors.Is(err, cache.ErrCacheNotAvailable) {
		return err
	}
	return nil
}

// Close closes the database pool and the redis client
func (r *PostgreSQLRepository) Close() error {
	var errs []error
	if sqlDB, err := r.db.DB(); err != nil {
		errs = append(errs, fmt.Errorf("failed to get database instance: %w", err))
	} else if err := sqlDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}

	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// RepositoryManager verifies connectivity before handing out the repository
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{config: config}
}

func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return errors.New("database connection is required")
	}

	repo := NewPostgreSQLRepository(rm.config)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository connectivity check failed: %w", err)
	}

	rm.repo = repo
	return nil
}

func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return errors.New("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

func (rm *RepositoryManager) Shutdown(context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}
