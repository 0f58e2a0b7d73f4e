package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryManager_RequiresDatabase(t *testing.T) {
	rm := NewRepositoryManager(RepositoryConfig{})

	err := rm.Initialize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database connection is required")

	assert.Nil(t, rm.GetRepository())
	assert.Error(t, rm.HealthCheck(context.Background()))
	assert.NoError(t, rm.Shutdown(context.Background()))
}

func TestPostgreSQLRepository_SharesCache(t *testing.T) {
	repo := NewPostgreSQLRepository(RepositoryConfig{DB: dryRunDB(t)}).(*PostgreSQLRepository)

	questions := repo.Question().(*QuestionPostgreSQL)
	sessions := repo.Session().(*SessionPostgreSQL)

	assert.Same(t, repo.cache, questions.cacheManager)
	assert.Same(t, repo.cache, sessions.cacheManager)
	assert.Nil(t, questions.hooks, "outside a transaction invalidation runs immediately")
	assert.False(t, repo.cache.Question.Available())
	assert.NotNil(t, repo.User())
}
