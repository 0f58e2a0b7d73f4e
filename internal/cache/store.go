package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Policy is the key prefix and default lifetime of one kind of cached value
type Policy struct {
	Prefix string
	TTL    time.Duration
}

var (
	// Questions change rarely once published
	QuestionPolicy = Policy{Prefix: "question:", TTL: 10 * time.Minute}

	// Orderings are pure functions of their inputs; the TTL only bounds memory
	OrderingPolicy = Policy{Prefix: "ordering:", TTL: 10 * time.Minute}

	// Session cursor reads during an active swipe run
	SessionPolicy = Policy{Prefix: "session:", TTL: 2 * time.Minute}

	// Directory users resolved from Casdoor
	UserPolicy = Policy{Prefix: "user:", TTL: 15 * time.Minute}
)

var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheNotFound     = errors.New("cache not found")
)

const deleteBatch = 100

// Store is a JSON view of redis under one prefix. A Store without a client
// misses on every read and drops every write.
type Store struct {
	client *redis.Client
	policy Policy
}

func NewStore(client *redis.Client, policy Policy) *Store {
	return &Store{client: client, policy: policy}
}

// WithTTL returns a copy of the store writing with ttl. A non-positive ttl
// keeps the policy default.
func (s *Store) WithTTL(ttl time.Duration) *Store {
	if ttl <= 0 {
		return s
	}
	clone := *s
	clone.policy.TTL = ttl
	return &clone
}

func (s *Store) Available() bool {
	return s.client != nil
}

func (s *Store) key(k string) string {
	return s.policy.Prefix + k
}

// Get decodes the value under key into dest
func (s *Store) Get(ctx context.Context, key string, dest interface{}) error {
	if s.client == nil {
		return ErrCacheNotAvailable
	}

	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheNotFound
	}
	if err != nil {
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

// Set stores value under key for the policy TTL
func (s *Store) Set(ctx context.Context, key string, value interface{}) error {
	if s.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	return s.client.Set(ctx, s.key(key), data, s.policy.TTL).Err()
}

// Delete unlinks the given keys
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if s.client == nil || len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	return s.client.Unlink(ctx, full...).Err()
}

// DeleteMatching unlinks every key under the prefix matching pattern. Keys
// are walked with SCAN and removed in batches.
func (s *Store) DeleteMatching(ctx context.Context, pattern string) error {
	if s.client == nil {
		return nil
	}

	batch := make([]string, 0, deleteBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := s.client.Unlink(ctx, batch...).Err()
		batch = batch[:0]
		return err
	}

	iter := s.client.Scan(ctx, 0, s.key(pattern), deleteBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == deleteBatch {
			if err := flush(); err != nil {
				return fmt.Errorf("cache unlink error: %w", err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan error: %w", err)
	}
	if err := flush(); err != nil {
		return fmt.Errorf("cache unlink error: %w", err)
	}
	return nil
}

// Remember returns the cached value under key, or calls fetch and caches its
// result. The bool reports a cache hit. Cache failures are logged and never
// returned; fetch errors always are.
func Remember[T any](ctx context.Context, s *Store, key string, fetch func() (T, error)) (T, bool, error) {
	var cached T
	err := s.Get(ctx, key, &cached)
	if err == nil {
		return cached, true, nil
	}
	if !errors.Is(err, ErrCacheNotFound) && !errors.Is(err, ErrCacheNotAvailable) {
		slog.WarnContext(ctx, "Cache read failed, fetching", "error", err, "key", s.key(key))
	}

	value, err := fetch()
	if err != nil {
		var zero T
		return zero, false, err
	}

	if err := s.Set(ctx, key, value); err != nil {
		slog.ErrorContext(ctx, "Cache write failed", "error", err, "key", s.key(key))
	}
	return value, false, nil
}

// CacheManager holds one store per cached value kind on a shared client
type CacheManager struct {
	client *redis.Client

	Question *Store
	Ordering *Store
	Session  *Store
}

// NewCacheManager builds the stores. A nil client yields pass-through stores.
func NewCacheManager(client *redis.Client) *CacheManager {
	return &CacheManager{
		client:   client,
		Question: NewStore(client, QuestionPolicy),
		Ordering: NewStore(client, OrderingPolicy),
		Session:  NewStore(client, SessionPolicy),
	}
}

func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.client == nil {
		return ErrCacheNotAvailable
	}
	if err := cm.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}
