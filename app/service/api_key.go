package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vibast-solutions/ms-go-apikeys/app/dto"
	"github.com/vibast-solutions/ms-go-apikeys/app/entity"
	"github.com/vibast-solutions/ms-go-apikeys/app/repository"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrAPIKeyNotFound = errors.New("api key not found")
	ErrAPIKeyConflict = errors.New("api key value already exists")
)

type APIKeyRepository interface {
	List(ctx context.Context) ([]*entity.APIKey, error)
	FindByID(ctx context.Context, id string) (*entity.APIKey, error)
	FindByValue(ctx context.Context, value string) (*entity.APIKey, error)
	Create(ctx context.Context, key *entity.APIKey) error
	Update(ctx context.Context, key *entity.APIKey) (*entity.APIKey, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type APIKeyService interface {
	List(ctx context.Context) ([]*entity.APIKey, error)
	Get(ctx context.Context, id string) (*entity.APIKey, error)
	Create(ctx context.Context, input dto.APIKeyInput) (*entity.APIKey, error)
	Update(ctx context.Context, id string, input dto.APIKeyInput) (*entity.APIKey, error)
	// Delete returns ErrAPIKeyNotFound when nothing was removed.
	Delete(ctx context.Context, id string) error
}

type apiKeyService struct {
	repo     APIKeyRepository
	recorder Recorder
	generate func() string
}

func NewAPIKeyService(repo APIKeyRepository, recorder Recorder) APIKeyService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &apiKeyService{
		repo:     repo,
		recorder: recorder,
		generate: GenerateKeyValue,
	}
}

func (s *apiKeyService) List(ctx context.Context) ([]*entity.APIKey, error) {
	keys, err := s.repo.List(ctx)
	s.recorder.ObserveOperation("list", outcomeOf(err))
	return keys, err
}

func (s *apiKeyService) Get(ctx context.Context, id string) (key *entity.APIKey, err error) {
	defer func() { s.recorder.ObserveOperation("get", outcomeOf(err)) }()

	key, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrAPIKeyNotFound
	}
	return key, nil
}

func (s *apiKeyService) Create(ctx context.Context, input dto.APIKeyInput) (key *entity.APIKey, err error) {
	defer func() { s.recorder.ObserveOperation("create", outcomeOf(err)) }()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	usageLimit, err := normalizeUsageLimit(input.UsageLimit)
	if err != nil {
		return nil, err
	}

	value := strings.TrimSpace(input.Value)
	if value == "" {
		value = s.generate()
	}

	key = &entity.APIKey{
		Name:        name,
		Value:       value,
		Description: input.Description,
		UsageCount:  0,
		UsageLimit:  usageLimit,
	}
	if err = s.repo.Create(ctx, key); err != nil {
		return nil, translateStoreError(err)
	}
	return key, nil
}

func (s *apiKeyService) Update(ctx context.Context, id string, input dto.APIKeyInput) (key *entity.APIKey, err error) {
	defer func() { s.recorder.ObserveOperation("update", outcomeOf(err)) }()

	name := strings.TrimSpace(input.Name)
	value := strings.TrimSpace(input.Value)
	if name == "" || value == "" {
		return nil, fmt.Errorf("%w: name and key are required", ErrValidation)
	}
	usageLimit, err := normalizeUsageLimit(input.UsageLimit)
	if err != nil {
		return nil, err
	}

	key, err = s.repo.Update(ctx, &entity.APIKey{
		ID:          id,
		Name:        name,
		Value:       value,
		Description: input.Description,
		UsageLimit:  usageLimit,
	})
	if err != nil {
		return nil, translateStoreError(err)
	}
	if key == nil {
		return nil, ErrAPIKeyNotFound
	}
	return key, nil
}

func (s *apiKeyService) Delete(ctx context.Context, id string) (err error) {
	defer func() { s.recorder.ObserveOperation("delete", outcomeOf(err)) }()

	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}

func normalizeUsageLimit(limit *int64) (sql.NullInt64, error) {
	if limit == nil {
		return sql.NullInt64{}, nil
	}
	if *limit < 0 {
		return sql.NullInt64{}, fmt.Errorf("%w: usageLimit must be a non-negative integer", ErrValidation)
	}
	return sql.NullInt64{Int64: *limit, Valid: true}, nil
}

func translateStoreError(err error) error {
	if errors.Is(err, repository.ErrDuplicateValue) {
		return fmt.Errorf("%w: %w", ErrAPIKeyConflict, err)
	}
	return err
}
