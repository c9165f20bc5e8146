package service

import "errors"

const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Recorder receives operation outcomes, typically for metrics.
type Recorder interface {
	ObserveOperation(operation, outcome string)
	ObserveValidation(result string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveOperation(string, string) {}
func (noopRecorder) ObserveValidation(string)        {}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrValidation):
		return OutcomeInvalid
	case errors.Is(err, ErrAPIKeyNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrAPIKeyConflict):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}
