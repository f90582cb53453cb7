package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/urbanwheels/urbanwheels/internal/pkg/logger"
)

// Checker verifies one dependency
type Checker func(ctx context.Context) error

// Service aggregates dependency health checks
type Service struct {
	logger   *logger.ZapLogger
	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewHealthService creates a health service
func NewHealthService(zapLogger *logger.ZapLogger) *Service {
	return &Service{
		logger:   zapLogger,
		checkers: make(map[string]Checker),
	}
}

// AddChecker registers a named dependency check
func (s *Service) AddChecker(name string, checker Checker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers[name] = checker
}

// Check runs all registered checks and reports per-dependency status
func (s *Service) Check(ctx context.Context) (map[string]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make(map[string]string, len(s.checkers))
	healthy := true
	for name, checker := range s.checkers {
		if err := checker(ctx); err != nil {
			results[name] = err.Error()
			healthy = false
			s.logger.Warn("Health check failed",
				logger.String("dependency", name),
				logger.Err(err))
			continue
		}
		results[name] = "ok"
	}

	return results, healthy
}

// RegisterEndpoints registers /health, /health/live and /health/ready
func RegisterEndpoints(e *echo.Echo, serviceName, version string, s *Service) {
	group := e.Group("/health")

	group.GET("", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		results, healthy := s.Check(ctx)
		status := "ok"
		statusCode := http.StatusOK
		if !healthy {
			status = "unhealthy"
			statusCode = http.StatusServiceUnavailable
		}

		return c.JSON(statusCode, map[string]interface{}{
			"status":       status,
			"service":      serviceName,
			"version":      version,
			"dependencies": results,
			"timestamp":    time.Now(),
		})
	})

	group.GET("/live", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "alive",
			"service": serviceName,
		})
	})

	group.GET("/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()

		if _, healthy := s.Check(ctx); !healthy {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status":  "not ready",
				"service": serviceName,
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ready",
			"service": serviceName,
		})
	})
}
