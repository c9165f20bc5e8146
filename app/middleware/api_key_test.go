package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-apikeys/app/entity"
	"github.com/vibast-solutions/ms-go-apikeys/app/middleware"
	"github.com/vibast-solutions/ms-go-apikeys/app/repository"
	"github.com/vibast-solutions/ms-go-apikeys/app/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
)

const findAPIKeyByValueQuery = `(?s)SELECT id, name, api_key, description, usage_count, usage_limit, created_at\s+FROM api_keys WHERE api_key = \?`

func newAPIKeyMiddleware() *middleware.APIKeyMiddleware {
	repo := repository.NewMemoryAPIKeyRepository(&entity.APIKey{
		ID:        "id-1",
		Name:      "default",
		Value:     "tvly-valid",
		CreatedAt: time.Now(),
	})
	return middleware.NewAPIKeyMiddleware(service.NewValidationService(repo, nil))
}

func runMiddleware(t *testing.T, mw *middleware.APIKeyMiddleware, method, apiKey string) (*httptest.ResponseRecorder, bool, echo.Context) {
	t.Helper()

	req := httptest.NewRequest(method, "/protected", nil)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	ctx := echo.New().NewContext(req, rec)

	called := false
	handler := mw.RequireAPIKey(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, called, ctx
}

func TestRequireAPIKey_MissingHeader(t *testing.T) {
	rec, called, _ := runMiddleware(t, newAPIKeyMiddleware(), http.MethodGet, "")
	if called {
		t.Fatalf("expected next handler not to be called")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestRequireAPIKey_InvalidKey(t *testing.T) {
	rec, called, _ := runMiddleware(t, newAPIKeyMiddleware(), http.MethodGet, "tvly-invalid")
	if called {
		t.Fatalf("expected next handler not to be called")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRequireAPIKey_ValidKey(t *testing.T) {
	rec, called, ctx := runMiddleware(t, newAPIKeyMiddleware(), http.MethodGet, "tvly-valid")
	if !called {
		t.Fatalf("expected next handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := ctx.Get(middleware.ContextKeyAPIKeyID); got != "id-1" {
		t.Fatalf("expected api key id in context, got %v", got)
	}
}

func TestRequireAPIKey_OptionsPassThrough(t *testing.T) {
	_, called, _ := runMiddleware(t, newAPIKeyMiddleware(), http.MethodOptions, "")
	if !called {
		t.Fatalf("expected preflight to reach next handler")
	}
}

func TestRequireAPIKey_StorageFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(findAPIKeyByValueQuery).
		WithArgs("tvly-valid").
		WillReturnError(errors.New("connection refused"))

	repo := repository.NewAPIKeyRepository(db, repository.DialectMySQL, time.Second)
	mw := middleware.NewAPIKeyMiddleware(service.NewValidationService(repo, nil))

	rec, called, _ := runMiddleware(t, mw, http.MethodGet, "tvly-valid")
	if called {
		t.Fatalf("expected next handler not to be called")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
