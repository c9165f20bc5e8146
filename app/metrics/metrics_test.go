package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/vibast-solutions/ms-go-apikeys/app/dto"
	"github.com/vibast-solutions/ms-go-apikeys/app/entity"
	"github.com/vibast-solutions/ms-go-apikeys/app/repository"
	"github.com/vibast-solutions/ms-go-apikeys/app/service"
)

func TestMetricsObserveOperation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOperation("create", service.OutcomeSuccess)
	m.ObserveOperation("create", service.OutcomeSuccess)
	m.ObserveOperation("create", service.OutcomeInvalid)

	if got := testutil.ToFloat64(m.operations.WithLabelValues("create", service.OutcomeSuccess)); got != 2 {
		t.Fatalf("expected 2 successful creates, got %v", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("create", service.OutcomeInvalid)); got != 1 {
		t.Fatalf("expected 1 invalid create, got %v", got)
	}
}

func TestMetricsWiredIntoServices(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	repo := repository.NewMemoryAPIKeyRepository(&entity.APIKey{ID: "1", Name: "default", Value: "tvly-1"})
	keys := service.NewAPIKeyService(repo, m)
	validator := service.NewValidationService(repo, m)
	ctx := context.Background()

	if _, err := keys.Create(ctx, dto.APIKeyInput{Name: ""}); err == nil {
		t.Fatalf("expected validation error")
	}
	validator.Validate(ctx, "tvly-1")
	validator.Validate(ctx, "nope")
	validator.Validate(ctx, "")

	if got := testutil.ToFloat64(m.validations.WithLabelValues("valid")); got != 1 {
		t.Fatalf("expected 1 valid, got %v", got)
	}
	if got := testutil.ToFloat64(m.validations.WithLabelValues(service.ReasonNotFound)); got != 1 {
		t.Fatalf("expected 1 not_found, got %v", got)
	}
	if got := testutil.ToFloat64(m.validations.WithLabelValues(service.ReasonMissing)); got != 1 {
		t.Fatalf("expected 1 missing, got %v", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("create", service.OutcomeInvalid)); got != 1 {
		t.Fatalf("expected 1 invalid create, got %v", got)
	}

	if n, err := testutil.GatherAndCount(reg, "apikeys_validations_total"); err != nil || n != 3 {
		t.Fatalf("expected 3 validation series, got %d (%v)", n, err)
	}
}
