package types

import (
	"errors"
	"math"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-apikeys/app/dto"
)

var ErrInvalidUsageLimit = errors.New("usageLimit must be a non-negative integer")

type CreateAPIKeyRequest struct {
	Name        string      `json:"name"`
	Key         string      `json:"key"`
	Description string      `json:"description"`
	UsageLimit  interface{} `json:"usageLimit"`
}

func NewCreateAPIKeyRequestFromContext(ctx echo.Context) (*CreateAPIKeyRequest, error) {
	var body CreateAPIKeyRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *CreateAPIKeyRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("Name is required")
	}

	return nil
}

func (r *CreateAPIKeyRequest) ToInput() (dto.APIKeyInput, error) {
	limit, err := parseUsageLimit(r.UsageLimit)
	if err != nil {
		return dto.APIKeyInput{}, err
	}

	return dto.APIKeyInput{
		Name:        r.Name,
		Value:       r.Key,
		Description: r.Description,
		UsageLimit:  limit,
	}, nil
}

type UpdateAPIKeyRequest struct {
	Name        string      `json:"name"`
	Key         string      `json:"key"`
	Description string      `json:"description"`
	UsageLimit  interface{} `json:"usageLimit"`
}

func NewUpdateAPIKeyRequestFromContext(ctx echo.Context) (*UpdateAPIKeyRequest, error) {
	var body UpdateAPIKeyRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *UpdateAPIKeyRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Key) == "" {
		return errors.New("Name and key are required")
	}

	return nil
}

func (r *UpdateAPIKeyRequest) ToInput() (dto.APIKeyInput, error) {
	limit, err := parseUsageLimit(r.UsageLimit)
	if err != nil {
		return dto.APIKeyInput{}, err
	}

	return dto.APIKeyInput{
		Name:        r.Name,
		Value:       r.Key,
		Description: r.Description,
		UsageLimit:  limit,
	}, nil
}

type ValidateAPIKeyRequest struct {
	APIKey interface{} `json:"apiKey"`
}

func NewValidateAPIKeyRequestFromContext(ctx echo.Context) (*ValidateAPIKeyRequest, error) {
	var body ValidateAPIKeyRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

// GetAPIKey returns the candidate key, or "" when it is absent or not a string.
func (r *ValidateAPIKeyRequest) GetAPIKey() string {
	if r == nil {
		return ""
	}
	key, ok := r.APIKey.(string)
	if !ok {
		return ""
	}
	return key
}

// parseUsageLimit accepts JSON numbers holding a non-negative integer. Non-numeric
// values mean "no limit".
func parseUsageLimit(v interface{}) (*int64, error) {
	n, ok := v.(float64)
	if !ok {
		return nil, nil
	}
	if n < 0 || n != math.Trunc(n) || n >= math.MaxInt64 {
		return nil, ErrInvalidUsageLimit
	}

	limit := int64(n)
	return &limit, nil
}
