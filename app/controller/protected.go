package controller

import (
	"net/http"

	"github.com/vibast-solutions/ms-go-apikeys/app/dto"
	httpdto "github.com/vibast-solutions/ms-go-apikeys/app/dto/http"
	"github.com/vibast-solutions/ms-go-apikeys/app/service"
	"github.com/vibast-solutions/ms-go-apikeys/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ProtectedController struct {
	validationService service.ValidationService
}

func NewProtectedController(validationService service.ValidationService) *ProtectedController {
	return &ProtectedController{validationService: validationService}
}

// Validate checks the apiKey field of the body. A body that cannot be parsed, or an
// apiKey that is not a string, counts as a missing key.
func (c *ProtectedController) Validate(ctx echo.Context) error {
	req, err := types.NewValidateAPIKeyRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind protected request")
	}

	result := c.validationService.Validate(ctx.Request().Context(), req.GetAPIKey())
	status, res := ValidationResponse(result)
	return ctx.JSON(status, res)
}

// Access is reached only through the API key middleware.
func (c *ProtectedController) Access(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, httpdto.ValidationResponse{Valid: true, Message: dto.MessageAccessGranted})
}

func (c *ProtectedController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ValidationResponse maps a validation outcome onto its HTTP status and body.
func ValidationResponse(result *dto.ValidationResult) (int, httpdto.ValidationResponse) {
	res := httpdto.ValidationResponse{Valid: result.Valid, Message: result.Message()}
	if result.Valid {
		return http.StatusOK, res
	}

	switch result.Reason {
	case dto.ReasonMissing:
		return http.StatusBadRequest, res
	case dto.ReasonNotFound:
		return http.StatusUnauthorized, res
	default:
		return http.StatusInternalServerError, res
	}
}
