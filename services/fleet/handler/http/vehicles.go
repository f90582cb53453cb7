package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
	nrpkg "github.com/urbanwheels/urbanwheels/internal/pkg/newrelic"
	"github.com/urbanwheels/urbanwheels/internal/utils"
	"github.com/urbanwheels/urbanwheels/services/fleet"
)

// VehiclesHandler handles HTTP requests for catalog operations
type VehiclesHandler struct {
	catalogUC fleet.CatalogUC
}

// NewVehiclesHandler creates a new vehicles HTTP handler
func NewVehiclesHandler(catalogUC fleet.CatalogUC) *VehiclesHandler {
	return &VehiclesHandler{
		catalogUC: catalogUC,
	}
}

// ListVehicles handles the catalog query. All filters are optional query
// parameters; radius is given in meters.
func (h *VehiclesHandler) ListVehicles(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Fleet.ListVehicles")

	filter := models.VehicleFilter{
		TypeCode: c.QueryParam("type"),
		Status:   models.VehicleStatus(c.QueryParam("status")),
	}

	if raw := c.QueryParam("min_battery"); raw != "" {
		minBattery, err := strconv.Atoi(raw)
		if err != nil {
			return utils.BadRequestResponse(c, "min_battery must be an integer")
		}
		filter.MinBattery = &minBattery
	}

	if raw := c.QueryParam("lat"); raw != "" {
		lat, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return utils.BadRequestResponse(c, "lat must be a number")
		}
		filter.Lat = &lat
	}

	if raw := c.QueryParam("lng"); raw != "" {
		lng, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return utils.BadRequestResponse(c, "lng must be a number")
		}
		filter.Lng = &lng
	}

	if raw := c.QueryParam("radius"); raw != "" {
		radiusMeters, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return utils.BadRequestResponse(c, "radius must be a number")
		}
		radiusKm := radiusMeters / 1000.0
		filter.RadiusKm = &radiusKm
	}

	vehicles, err := h.catalogUC.QueryVehicles(c.Request().Context(), filter)
	if err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.DomainErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Vehicles retrieved successfully", vehicles)
}

// GetVehicle handles lookup of a single vehicle by id
func (h *VehiclesHandler) GetVehicle(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Fleet.GetVehicle")

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return utils.BadRequestResponse(c, "Vehicle ID must be an integer")
	}

	vehicle, err := h.catalogUC.GetVehicleByID(c.Request().Context(), id)
	if err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.DomainErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Vehicle retrieved successfully", vehicle)
}

// GetVehicleByCode handles lookup of a single vehicle by its unit code
func (h *VehiclesHandler) GetVehicleByCode(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Fleet.GetVehicleByCode")

	code := c.Param("code")
	if code == "" {
		return utils.BadRequestResponse(c, "Vehicle code is required")
	}

	vehicle, err := h.catalogUC.GetVehicleByCode(c.Request().Context(), code)
	if err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.DomainErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Vehicle retrieved successfully", vehicle)
}

// ListVehicleTypes handles the vehicle type listing
func (h *VehiclesHandler) ListVehicleTypes(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Fleet.ListVehicleTypes")

	types, err := h.catalogUC.ListVehicleTypes(c.Request().Context())
	if err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.DomainErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Vehicle types retrieved successfully", types)
}

// UpdateTelemetry handles a position/battery report from the telemetry
// ingestion pipeline.
func (h *VehiclesHandler) UpdateTelemetry(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Fleet.UpdateTelemetry")

	vehicleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return utils.BadRequestResponse(c, "Vehicle ID must be an integer")
	}

	var update models.TelemetryUpdate
	if err := c.Bind(&update); err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}
	update.VehicleID = vehicleID

	if err := c.Validate(&update); err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	if err := h.catalogUC.UpdateTelemetry(c.Request().Context(), &update); err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.DomainErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Telemetry recorded successfully", nil)
}
