package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vibast-solutions/ms-go-apikeys/app/entity"
)

// MemoryAPIKeyRepository keeps records in process memory in insertion order.
// Each instance owns its own state; nothing is shared between instances.
type MemoryAPIKeyRepository struct {
	mu   sync.RWMutex
	keys []*entity.APIKey
	now  func() time.Time
}

func NewMemoryAPIKeyRepository(seed ...*entity.APIKey) *MemoryAPIKeyRepository {
	r := &MemoryAPIKeyRepository{
		keys: make([]*entity.APIKey, 0, len(seed)),
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, key := range seed {
		r.keys = append(r.keys, key.Clone())
	}
	return r
}

func (r *MemoryAPIKeyRepository) List(_ context.Context) ([]*entity.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]*entity.APIKey, 0, len(r.keys))
	for _, key := range r.keys {
		keys = append(keys, key.Clone())
	}
	return keys, nil
}

func (r *MemoryAPIKeyRepository) FindByID(_ context.Context, id string) (*entity.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexByID(id); i >= 0 {
		return r.keys[i].Clone(), nil
	}
	return nil, nil
}

func (r *MemoryAPIKeyRepository) FindByValue(_ context.Context, value string) (*entity.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexByValue(value); i >= 0 {
		return r.keys[i].Clone(), nil
	}
	return nil, nil
}

func (r *MemoryAPIKeyRepository) Create(_ context.Context, key *entity.APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexByValue(key.Value) >= 0 {
		return ErrDuplicateValue
	}
	if key.ID == "" {
		key.ID = uuid.New().String()
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = r.now()
	}

	r.keys = append(r.keys, key.Clone())
	return nil
}

func (r *MemoryAPIKeyRepository) Update(_ context.Context, key *entity.APIKey) (*entity.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(key.ID)
	if i < 0 {
		return nil, nil
	}
	if j := r.indexByValue(key.Value); j >= 0 && j != i {
		return nil, ErrDuplicateValue
	}

	stored := r.keys[i]
	stored.Name = key.Name
	stored.Value = key.Value
	stored.Description = key.Description
	stored.UsageLimit = key.UsageLimit
	return stored.Clone(), nil
}

func (r *MemoryAPIKeyRepository) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		return 0, nil
	}
	r.keys = append(r.keys[:i], r.keys[i+1:]...)
	return 1, nil
}

func (r *MemoryAPIKeyRepository) indexByID(id string) int {
	for i, key := range r.keys {
		if key.ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryAPIKeyRepository) indexByValue(value string) int {
	for i, key := range r.keys {
		if key.Value == value {
			return i
		}
	}
	return -1
}
