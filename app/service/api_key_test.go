package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-apikeys/app/dto"
	"github.com/vibast-solutions/ms-go-apikeys/app/entity"
	"github.com/vibast-solutions/ms-go-apikeys/app/repository"
	"github.com/vibast-solutions/ms-go-apikeys/app/service"

	"github.com/DATA-DOG/go-sqlmock"
)

type recordedOperation struct {
	operation string
	outcome   string
}

type fakeRecorder struct {
	operations  []recordedOperation
	validations []string
}

func (r *fakeRecorder) ObserveOperation(operation, outcome string) {
	r.operations = append(r.operations, recordedOperation{operation: operation, outcome: outcome})
}

func (r *fakeRecorder) ObserveValidation(result string) {
	r.validations = append(r.validations, result)
}

func int64Ptr(v int64) *int64 {
	return &v
}

func newMemoryService(seed ...*entity.APIKey) (service.APIKeyService, *fakeRecorder) {
	recorder := &fakeRecorder{}
	return service.NewAPIKeyService(repository.NewMemoryAPIKeyRepository(seed...), recorder), recorder
}

func newSQLService(t *testing.T) (service.APIKeyService, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	repo := repository.NewAPIKeyRepository(db, repository.DialectMySQL, time.Second)
	return service.NewAPIKeyService(repo, nil), mock, func() { _ = db.Close() }
}

func TestAPIKeyService_CreateRoundTrip(t *testing.T) {
	svc, recorder := newMemoryService()
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.APIKeyInput{Name: "n", Value: "k"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	fetched, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if fetched.Name != "n" || fetched.Value != "k" || fetched.UsageCount != 0 ||
		fetched.UsageLimit.Valid || fetched.Description != "" {
		t.Fatalf("unexpected record: %+v", fetched)
	}
	if fetched.CreatedAt.IsZero() {
		t.Fatalf("expected created_at")
	}
	if len(recorder.operations) != 2 || recorder.operations[0] != (recordedOperation{"create", service.OutcomeSuccess}) {
		t.Fatalf("unexpected recorded operations: %+v", recorder.operations)
	}
}

func TestAPIKeyService_CreateGeneratesValue(t *testing.T) {
	svc, _ := newMemoryService()

	created, err := svc.Create(context.Background(), dto.APIKeyInput{Name: "default"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !keyPattern.MatchString(created.Value) {
		t.Fatalf("expected generated key, got %q", created.Value)
	}
}

func TestAPIKeyService_CreateKeepsUsageLimit(t *testing.T) {
	svc, _ := newMemoryService()

	created, err := svc.Create(context.Background(), dto.APIKeyInput{Name: "limited", UsageLimit: int64Ptr(1000)})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !created.UsageLimit.Valid || created.UsageLimit.Int64 != 1000 {
		t.Fatalf("expected usage limit 1000, got %+v", created.UsageLimit)
	}
}

func TestAPIKeyService_CreateRejectsMissingName(t *testing.T) {
	svc, recorder := newMemoryService()

	for _, name := range []string{"", "   "} {
		_, err := svc.Create(context.Background(), dto.APIKeyInput{Name: name, Value: "x"})
		if !errors.Is(err, service.ErrValidation) {
			t.Fatalf("expected ErrValidation for name %q, got %v", name, err)
		}
	}
	if recorder.operations[0].outcome != service.OutcomeInvalid {
		t.Fatalf("expected invalid outcome, got %+v", recorder.operations[0])
	}
}

func TestAPIKeyService_CreateRejectsNegativeUsageLimit(t *testing.T) {
	svc, _ := newMemoryService()

	_, err := svc.Create(context.Background(), dto.APIKeyInput{Name: "n", UsageLimit: int64Ptr(-1)})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAPIKeyService_CreateDuplicateValue(t *testing.T) {
	svc, _ := newMemoryService(&entity.APIKey{ID: "1", Name: "default", Value: "tvly-1"})

	_, err := svc.Create(context.Background(), dto.APIKeyInput{Name: "again", Value: "tvly-1"})
	if !errors.Is(err, service.ErrAPIKeyConflict) {
		t.Fatalf("expected ErrAPIKeyConflict, got %v", err)
	}
}

func TestAPIKeyService_UniqueIDs(t *testing.T) {
	svc, _ := newMemoryService()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		if _, err := svc.Create(ctx, dto.APIKeyInput{Name: "n"}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	keys, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	seen := make(map[string]struct{})
	for _, key := range keys {
		if _, dup := seen[key.ID]; dup {
			t.Fatalf("duplicate id %s", key.ID)
		}
		seen[key.ID] = struct{}{}
	}
}

func TestAPIKeyService_ListIsIdempotent(t *testing.T) {
	svc, _ := newMemoryService(
		&entity.APIKey{ID: "1", Name: "default", Value: "tvly-1"},
		&entity.APIKey{ID: "2", Name: "tmp1", Value: "tvly-2"},
	)
	ctx := context.Background()

	first, _ := svc.List(ctx)
	second, _ := svc.List(ctx)
	if len(first) != len(second) {
		t.Fatalf("list length changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if *first[i] != *second[i] {
			t.Fatalf("list entry %d changed: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestAPIKeyService_UpdateRejectsMissingKey(t *testing.T) {
	svc, _ := newMemoryService(&entity.APIKey{ID: "1", Name: "default", Value: "tvly-1"})

	_, err := svc.Update(context.Background(), "1", dto.APIKeyInput{Name: "n"})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAPIKeyService_UpdateUnknownID(t *testing.T) {
	svc, _ := newMemoryService()

	_, err := svc.Update(context.Background(), "does-not-exist", dto.APIKeyInput{Name: "n", Value: "k"})
	if !errors.Is(err, service.ErrAPIKeyNotFound) {
		t.Fatalf("expected ErrAPIKeyNotFound, got %v", err)
	}
}

func TestAPIKeyService_UpdatePreservesImmutableFields(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	svc, _ := newMemoryService(&entity.APIKey{ID: "1", Name: "default", Value: "tvly-1", UsageCount: 24, CreatedAt: created})

	updated, err := svc.Update(context.Background(), "1", dto.APIKeyInput{
		Name:        "renamed",
		Value:       "tvly-2",
		Description: "rotated",
		UsageLimit:  int64Ptr(5),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.ID != "1" || updated.UsageCount != 24 || !updated.CreatedAt.Equal(created) {
		t.Fatalf("immutable fields changed: %+v", updated)
	}
	if updated.Name != "renamed" || updated.Value != "tvly-2" || updated.Description != "rotated" || updated.UsageLimit.Int64 != 5 {
		t.Fatalf("mutable fields not applied: %+v", updated)
	}

	cleared, err := svc.Update(context.Background(), "1", dto.APIKeyInput{Name: "renamed", Value: "tvly-2"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if cleared.UsageLimit.Valid || cleared.Description != "" {
		t.Fatalf("expected usage limit and description to be reset, got %+v", cleared)
	}
}

func TestAPIKeyService_DeleteThenGet(t *testing.T) {
	svc, _ := newMemoryService(&entity.APIKey{ID: "1", Name: "default", Value: "tvly-1"})
	ctx := context.Background()

	if err := svc.Delete(ctx, "1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, "1"); !errors.Is(err, service.ErrAPIKeyNotFound) {
		t.Fatalf("expected ErrAPIKeyNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, "1"); !errors.Is(err, service.ErrAPIKeyNotFound) {
		t.Fatalf("expected ErrAPIKeyNotFound on second delete, got %v", err)
	}
}

func TestAPIKeyService_StorageFailurePropagates(t *testing.T) {
	svc, mock, cleanup := newSQLService(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO api_keys`).WillReturnError(errors.New("connection reset"))
	mock.ExpectExec(`DELETE FROM api_keys`).WillReturnError(errors.New("connection reset"))

	if _, err := svc.Create(context.Background(), dto.APIKeyInput{Name: "n"}); !errors.Is(err, repository.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable on create, got %v", err)
	}
	if err := svc.Delete(context.Background(), "1"); !errors.Is(err, repository.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable on delete, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
