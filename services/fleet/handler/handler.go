package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/urbanwheels/urbanwheels/internal/pkg/middleware"
	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
	"github.com/urbanwheels/urbanwheels/services/fleet"
	httpHandler "github.com/urbanwheels/urbanwheels/services/fleet/handler/http"
)

// Handler combines all handlers for the fleet service
type Handler struct {
	vehiclesHTTP *httpHandler.VehiclesHandler
	tripsHTTP    *httpHandler.TripsHandler
	cfg          *models.Config
}

// NewHandler creates a new combined handler
func NewHandler(
	catalogUC fleet.CatalogUC,
	tripUC fleet.TripUC,
	cfg *models.Config,
) *Handler {
	return &Handler{
		vehiclesHTTP: httpHandler.NewVehiclesHandler(catalogUC),
		tripsHTTP:    httpHandler.NewTripsHandler(tripUC),
		cfg:          cfg,
	}
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(e *echo.Echo, apiKeyMW *middleware.APIKeyMiddleware) {
	// Public catalog endpoints
	api := e.Group("/api")
	api.GET("/vehicles", h.vehiclesHTTP.ListVehicles)
	api.GET("/vehicles/code/:code", h.vehiclesHTTP.GetVehicleByCode)
	api.GET("/vehicles/:id", h.vehiclesHTTP.GetVehicle)
	api.GET("/vehicle-types", h.vehiclesHTTP.ListVehicleTypes)

	// Rider endpoints (JWT required)
	rider := api.Group("", middleware.JWTAuthMiddleware(h.cfg.JWT))
	rider.POST("/vehicles/:id/reserve", h.tripsHTTP.ReserveVehicle)
	rider.GET("/trips/:id", h.tripsHTTP.GetTrip)
	rider.POST("/trips/:id/cancel", h.tripsHTTP.CancelTrip)

	// Internal routes for service-to-service communication (API key required)
	internal := e.Group("/internal", apiKeyMW.APIKeyHandler("telemetry-service", "ops-service"))
	internal.POST("/vehicles/:id/telemetry", h.vehiclesHTTP.UpdateTelemetry)
	internal.POST("/trips/:id/start", h.tripsHTTP.StartTrip)
	internal.POST("/trips/:id/complete", h.tripsHTTP.CompleteTrip)
	internal.POST("/trips/expire", h.tripsHTTP.ExpireReservations)
}
