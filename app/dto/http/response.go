package http

import (
	"time"

	"github.com/vibast-solutions/ms-go-apikeys/app/entity"
)

type APIKeyResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Key         string    `json:"key"`
	Usage       int64     `json:"usage"`
	UsageLimit  *int64    `json:"usageLimit"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewAPIKeyResponse(key *entity.APIKey) APIKeyResponse {
	res := APIKeyResponse{
		ID:          key.ID,
		Name:        key.Name,
		Key:         key.Value,
		Usage:       key.UsageCount,
		Description: key.Description,
		CreatedAt:   key.CreatedAt,
	}
	if key.UsageLimit.Valid {
		limit := key.UsageLimit.Int64
		res.UsageLimit = &limit
	}
	return res
}

func NewAPIKeyResponses(keys []*entity.APIKey) []APIKeyResponse {
	res := make([]APIKeyResponse, 0, len(keys))
	for _, key := range keys {
		res = append(res, NewAPIKeyResponse(key))
	}
	return res
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type ValidationResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}
