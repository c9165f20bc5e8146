package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-apikeys/app/controller"
	"github.com/vibast-solutions/ms-go-apikeys/app/service"
)

const ContextKeyAPIKeyID = "api_key_id"

type APIKeyMiddleware struct {
	validationService service.ValidationService
}

func NewAPIKeyMiddleware(validationService service.ValidationService) *APIKeyMiddleware {
	return &APIKeyMiddleware{validationService: validationService}
}

func (m *APIKeyMiddleware) RequireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Let CORS preflight pass.
		if c.Request().Method == http.MethodOptions {
			return next(c)
		}

		apiKey := strings.TrimSpace(c.Request().Header.Get("X-API-Key"))
		result := m.validationService.Validate(c.Request().Context(), apiKey)
		if !result.Valid {
			logrus.WithField("reason", result.Reason).Debug("Rejected x-api-key header")
			status, res := controller.ValidationResponse(result)
			return c.JSON(status, res)
		}

		c.Set(ContextKeyAPIKeyID, result.KeyID)
		return next(c)
	}
}
