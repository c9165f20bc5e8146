package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-apikeys/app/entity"
)

const cacheKeyPrefix = "apikeys:value:"

// KeyCache holds records by their secret value. Implementations are never the source of truth.
type KeyCache interface {
	Get(ctx context.Context, value string) (*entity.APIKey, error)
	Set(ctx context.Context, key *entity.APIKey) error
	Delete(ctx context.Context, values ...string) error
}

type RedisKeyCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisKeyCache(client redis.UniversalClient, ttl time.Duration) *RedisKeyCache {
	return &RedisKeyCache{client: client, ttl: ttl}
}

type cachedAPIKey struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UsageCount  int64     `json:"usage_count"`
	UsageLimit  *int64    `json:"usage_limit"`
	CreatedAt   time.Time `json:"created_at"`
}

// Get returns nil, nil on a cache miss.
func (c *RedisKeyCache) Get(ctx context.Context, value string) (*entity.APIKey, error) {
	raw, err := c.client.Get(ctx, cacheKey(value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var cached cachedAPIKey
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, err
	}

	key := &entity.APIKey{
		ID:          cached.ID,
		Name:        cached.Name,
		Value:       cached.Value,
		Description: cached.Description,
		UsageCount:  cached.UsageCount,
		CreatedAt:   cached.CreatedAt,
	}
	if cached.UsageLimit != nil {
		key.UsageLimit.Int64 = *cached.UsageLimit
		key.UsageLimit.Valid = true
	}
	return key, nil
}

func (c *RedisKeyCache) Set(ctx context.Context, key *entity.APIKey) error {
	cached := cachedAPIKey{
		ID:          key.ID,
		Name:        key.Name,
		Value:       key.Value,
		Description: key.Description,
		UsageCount:  key.UsageCount,
		CreatedAt:   key.CreatedAt,
	}
	if key.UsageLimit.Valid {
		limit := key.UsageLimit.Int64
		cached.UsageLimit = &limit
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(key.Value), raw, c.ttl).Err()
}

func (c *RedisKeyCache) Delete(ctx context.Context, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(values))
	for _, value := range values {
		keys = append(keys, cacheKey(value))
	}
	return c.client.Del(ctx, keys...).Err()
}

func cacheKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

type APIKeyStore interface {
	List(ctx context.Context) ([]*entity.APIKey, error)
	FindByID(ctx context.Context, id string) (*entity.APIKey, error)
	FindByValue(ctx context.Context, value string) (*entity.APIKey, error)
	Create(ctx context.Context, key *entity.APIKey) error
	Update(ctx context.Context, key *entity.APIKey) (*entity.APIKey, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// CachedAPIKeyRepository serves value lookups from a KeyCache and sends everything
// else to the wrapped store. Mutations read the current record from the store first
// and evict its cached value afterwards.
type CachedAPIKeyRepository struct {
	store APIKeyStore
	cache KeyCache
}

func NewCachedAPIKeyRepository(store APIKeyStore, cache KeyCache) *CachedAPIKeyRepository {
	return &CachedAPIKeyRepository{store: store, cache: cache}
}

func (r *CachedAPIKeyRepository) List(ctx context.Context) ([]*entity.APIKey, error) {
	return r.store.List(ctx)
}

func (r *CachedAPIKeyRepository) FindByID(ctx context.Context, id string) (*entity.APIKey, error) {
	return r.store.FindByID(ctx, id)
}

func (r *CachedAPIKeyRepository) FindByValue(ctx context.Context, value string) (*entity.APIKey, error) {
	cached, err := r.cache.Get(ctx, value)
	if err != nil {
		logrus.WithError(err).Warn("API key cache lookup failed")
	} else if cached != nil && cached.Value == value {
		return cached, nil
	}

	key, err := r.store.FindByValue(ctx, value)
	if err != nil || key == nil {
		return key, err
	}

	if err := r.cache.Set(ctx, key); err != nil {
		logrus.WithError(err).Warn("API key cache fill failed")
	}
	return key, nil
}

func (r *CachedAPIKeyRepository) Create(ctx context.Context, key *entity.APIKey) error {
	return r.store.Create(ctx, key)
}

func (r *CachedAPIKeyRepository) Update(ctx context.Context, key *entity.APIKey) (*entity.APIKey, error) {
	current, err := r.store.FindByID(ctx, key.ID)
	if err != nil || current == nil {
		return nil, err
	}

	updated, err := r.store.Update(ctx, key)
	if err != nil {
		return nil, err
	}
	r.evict(ctx, current.Value, key.Value)
	return updated, nil
}

func (r *CachedAPIKeyRepository) Delete(ctx context.Context, id string) (int64, error) {
	current, err := r.store.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}

	rows, err := r.store.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	if current != nil {
		r.evict(ctx, current.Value)
	}
	return rows, nil
}

func (r *CachedAPIKeyRepository) evict(ctx context.Context, values ...string) {
	if err := r.cache.Delete(ctx, values...); err != nil {
		logrus.WithError(err).Warn("API key cache eviction failed")
	}
}
