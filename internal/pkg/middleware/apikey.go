package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
	"github.com/urbanwheels/urbanwheels/internal/utils"
)

const (
	// APIKeyHeader carries the key on service-to-service calls
	APIKeyHeader = "X-API-Key"
)

// APIKeyMiddleware validates keys for service-to-service communication
type APIKeyMiddleware struct {
	cfg *models.APIKeyConfig
}

// NewAPIKeyMiddleware creates an API key middleware from configuration
func NewAPIKeyMiddleware(cfg *models.APIKeyConfig) *APIKeyMiddleware {
	return &APIKeyMiddleware{cfg: cfg}
}

// APIKeyHandler returns middleware accepting keys of the allowed services
func (m *APIKeyMiddleware) APIKeyHandler(allowedServices ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := c.Request().Header.Get(APIKeyHeader)
			if apiKey == "" {
				return utils.ErrorResponseHandler(c, http.StatusUnauthorized, "API key is required")
			}

			validKey := false
			for _, service := range allowedServices {
				expected := m.cfg.Lookup(service)
				if expected != "" && subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) == 1 {
					validKey = true
					c.Set("api_service", service)
					break
				}
			}

			if !validKey {
				return utils.ErrorResponseHandler(c, http.StatusUnauthorized, "Invalid API key")
			}

			return next(c)
		}
	}
}
