package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/urbanwheels/urbanwheels/internal/pkg/middleware"
	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
	nrpkg "github.com/urbanwheels/urbanwheels/internal/pkg/newrelic"
	"github.com/urbanwheels/urbanwheels/internal/utils"
	"github.com/urbanwheels/urbanwheels/services/fleet"
)

// TripsHandler handles HTTP requests for reservation and trip lifecycle
// operations
type TripsHandler struct {
	tripUC fleet.TripUC
}

// NewTripsHandler creates a new trips HTTP handler
func NewTripsHandler(tripUC fleet.TripUC) *TripsHandler {
	return &TripsHandler{
		tripUC: tripUC,
	}
}

// ReserveVehicle handles a rider's reservation request
func (h *TripsHandler) ReserveVehicle(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Fleet.ReserveVehicle")

	vehicleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return utils.BadRequestResponse(c, "Vehicle ID must be an integer")
	}

	userID := middleware.UserIDFromEchoContext(c)
	if userID == 0 {
		return utils.UnauthorizedResponse(c, "")
	}

	nrpkg.AddTransactionAttribute(txn, "vehicle.id", vehicleID)
	nrpkg.AddTransactionAttribute(txn, "user.id", userID)

	trip, err := h.tripUC.Reserve(c.Request().Context(), userID, vehicleID)
	if err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.DomainErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusCreated, "Vehicle reserved successfully", trip)
}

// GetTrip handles a rider's lookup of their own trip
func (h *TripsHandler) GetTrip(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Fleet.GetTrip")

	tripID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return utils.BadRequestResponse(c, "Trip ID must be an integer")
	}

	userID := middleware.UserIDFromEchoContext(c)
	if userID == 0 {
		return utils.UnauthorizedResponse(c, "")
	}

	trip, err := h.tripUC.GetTrip(c.Request().Context(), tripID)
	if err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.DomainErrorResponse(c, err)
	}
	if trip.UserID != userID {
		return utils.ForbiddenResponse(c, "trip belongs to another user")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Trip retrieved successfully", trip)
}

// CancelTrip handles a rider cancelling their reservation
func (h *TripsHandler) CancelTrip(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Fleet.CancelTrip")

	tripID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return utils.BadRequestResponse(c, "Trip ID must be an integer")
	}

	userID := middleware.UserIDFromEchoContext(c)
	if userID == 0 {
		return utils.UnauthorizedResponse(c, "")
	}

	trip, err := h.tripUC.CancelTrip(c.Request().Context(), userID, tripID)
	if err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.DomainErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Trip cancelled successfully", trip)
}

// StartTrip handles the unlock signal from the vehicle gateway
func (h *TripsHandler) StartTrip(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Fleet.StartTrip")

	tripID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return utils.BadRequestResponse(c, "Trip ID must be an integer")
	}

	trip, err := h.tripUC.StartTrip(c.Request().Context(), tripID)
	if err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.DomainErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Trip started successfully", trip)
}

// CompleteTrip handles the end-of-trip signal from the vehicle gateway
func (h *TripsHandler) CompleteTrip(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Fleet.CompleteTrip")

	tripID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return utils.BadRequestResponse(c, "Trip ID must be an integer")
	}

	var req models.CompleteTripRequest
	if err := c.Bind(&req); err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	trip, err := h.tripUC.CompleteTrip(c.Request().Context(), tripID, req.KmTotal)
	if err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.DomainErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Trip completed successfully", trip)
}

// ExpireReservations cancels every reservation past its TTL. Called
// periodically by the ops scheduler.
func (h *TripsHandler) ExpireReservations(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Fleet.ExpireReservations")

	expired, err := h.tripUC.ExpireReservations(c.Request().Context())
	if err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.DomainErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Reservations expired successfully", map[string]interface{}{
		"expired_count": len(expired),
		"trips":         expired,
	})
}
