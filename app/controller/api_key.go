package controller

import (
	"errors"
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-apikeys/app/dto/http"
	"github.com/vibast-solutions/ms-go-apikeys/app/service"
	"github.com/vibast-solutions/ms-go-apikeys/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	msgInvalidBody     = "Invalid request body"
	msgNameRequired    = "Name is required"
	msgNameKeyRequired = "Name and key are required"
	msgAPIKeyNotFound  = "API key not found"
	msgAPIKeyConflict  = "API key already exists"
	msgAPIKeyDeleted   = "API key deleted successfully"
	msgErrFetchingKeys = "Error fetching API keys"
	msgErrFetchingKey  = "Error fetching API key"
	msgErrCreatingKey  = "Error creating API key"
	msgErrUpdatingKey  = "Error updating API key"
	msgErrDeletingKey  = "Error deleting API key"
)

type APIKeyController struct {
	apiKeyService service.APIKeyService
}

func NewAPIKeyController(apiKeyService service.APIKeyService) *APIKeyController {
	return &APIKeyController{apiKeyService: apiKeyService}
}

func (c *APIKeyController) List(ctx echo.Context) error {
	keys, err := c.apiKeyService.List(ctx.Request().Context())
	if err != nil {
		logrus.WithError(err).Error("List API keys failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Message: msgErrFetchingKeys, Error: err.Error()})
	}

	return ctx.JSON(http.StatusOK, httpdto.NewAPIKeyResponses(keys))
}

func (c *APIKeyController) Get(ctx echo.Context) error {
	id := ctx.Param("id")
	key, err := c.apiKeyService.Get(ctx.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAPIKeyNotFound) {
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Message: msgAPIKeyNotFound})
		}
		logrus.WithError(err).WithField("id", id).Error("Get API key failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Message: msgErrFetchingKey, Error: err.Error()})
	}

	return ctx.JSON(http.StatusOK, httpdto.NewAPIKeyResponse(key))
}

func (c *APIKeyController) Create(ctx echo.Context) error {
	req, err := types.NewCreateAPIKeyRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind create API key request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Message: msgInvalidBody})
	}
	if err = req.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Message: err.Error()})
	}
	input, err := req.ToInput()
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Message: err.Error()})
	}

	key, err := c.apiKeyService.Create(ctx.Request().Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Message: msgNameRequired})
		case errors.Is(err, service.ErrAPIKeyConflict):
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Message: msgAPIKeyConflict})
		}
		logrus.WithError(err).WithField("name", input.Name).Error("Create API key failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Message: msgErrCreatingKey, Error: err.Error()})
	}

	logrus.WithField("id", key.ID).Info("API key created")
	return ctx.JSON(http.StatusCreated, httpdto.NewAPIKeyResponse(key))
}

func (c *APIKeyController) Update(ctx echo.Context) error {
	id := ctx.Param("id")
	req, err := types.NewUpdateAPIKeyRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind update API key request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Message: msgInvalidBody})
	}
	if err = req.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Message: err.Error()})
	}
	input, err := req.ToInput()
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Message: err.Error()})
	}

	key, err := c.apiKeyService.Update(ctx.Request().Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Message: msgNameKeyRequired})
		case errors.Is(err, service.ErrAPIKeyNotFound):
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Message: msgAPIKeyNotFound})
		case errors.Is(err, service.ErrAPIKeyConflict):
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Message: msgAPIKeyConflict})
		}
		logrus.WithError(err).WithField("id", id).Error("Update API key failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Message: msgErrUpdatingKey, Error: err.Error()})
	}

	logrus.WithField("id", key.ID).Info("API key updated")
	return ctx.JSON(http.StatusOK, httpdto.NewAPIKeyResponse(key))
}

// Delete answers 200 for unknown ids too, so repeated deletes are harmless.
func (c *APIKeyController) Delete(ctx echo.Context) error {
	id := ctx.Param("id")
	err := c.apiKeyService.Delete(ctx.Request().Context(), id)
	if err != nil && !errors.Is(err, service.ErrAPIKeyNotFound) {
		logrus.WithError(err).WithField("id", id).Error("Delete API key failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Message: msgErrDeletingKey, Error: err.Error()})
	}
	if err != nil {
		logrus.WithField("id", id).Debug("Delete requested for unknown API key")
	} else {
		logrus.WithField("id", id).Info("API key deleted")
	}

	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: msgAPIKeyDeleted})
}
