package dto

const (
	ReasonMissing          = "missing"
	ReasonNotFound         = "not_found"
	ReasonValidationFailed = "validation_failed"
)

const (
	MessageAccessGranted    = "valid apy key, /protected can be accessed"
	MessageAPIKeyRequired   = "API key is required"
	MessageInvalidAPIKey    = "Invalid API Key"
	MessageValidationFailed = "Validation failed"
)

// APIKeyInput carries caller-supplied fields for create and update.
// A nil UsageLimit means unlimited.
type APIKeyInput struct {
	Name        string
	Value       string
	Description string
	UsageLimit  *int64
}

type ValidationResult struct {
	Valid  bool
	Reason string
	KeyID  string
}

// Message is the caller-facing text shared by the HTTP and gRPC surfaces.
func (r *ValidationResult) Message() string {
	if r.Valid {
		return MessageAccessGranted
	}
	switch r.Reason {
	case ReasonMissing:
		return MessageAPIKeyRequired
	case ReasonNotFound:
		return MessageInvalidAPIKey
	default:
		return MessageValidationFailed
	}
}
