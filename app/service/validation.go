package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-apikeys/app/dto"
	"github.com/vibast-solutions/ms-go-apikeys/app/entity"
)

const (
	ReasonMissing          = dto.ReasonMissing
	ReasonNotFound         = dto.ReasonNotFound
	ReasonValidationFailed = dto.ReasonValidationFailed

	validationResultValid = "valid"
)

type APIKeyFinder interface {
	FindByValue(ctx context.Context, value string) (*entity.APIKey, error)
}

type ValidationService interface {
	// Validate never reports a key as valid unless the store confirmed it.
	Validate(ctx context.Context, candidate string) *dto.ValidationResult
}

type validationService struct {
	finder   APIKeyFinder
	recorder Recorder
}

func NewValidationService(finder APIKeyFinder, recorder Recorder) ValidationService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &validationService{finder: finder, recorder: recorder}
}

func (s *validationService) Validate(ctx context.Context, candidate string) *dto.ValidationResult {
	result := s.validate(ctx, candidate)
	if result.Valid {
		s.recorder.ObserveValidation(validationResultValid)
	} else {
		s.recorder.ObserveValidation(result.Reason)
	}
	return result
}

func (s *validationService) validate(ctx context.Context, candidate string) *dto.ValidationResult {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return &dto.ValidationResult{Reason: ReasonMissing}
	}

	key, err := s.finder.FindByValue(ctx, candidate)
	if err != nil {
		logrus.WithError(err).Error("API key lookup failed during validation")
		return &dto.ValidationResult{Reason: ReasonValidationFailed}
	}
	if key == nil {
		return &dto.ValidationResult{Reason: ReasonNotFound}
	}

	return &dto.ValidationResult{Valid: true, KeyID: key.ID}
}
