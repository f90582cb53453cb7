package usecase

import (
	"context"
	"math"
	"time"

	"github.com/looplab/fsm"

	"github.com/urbanwheels/urbanwheels/internal/pkg/apperr"
	"github.com/urbanwheels/urbanwheels/internal/pkg/logger"
	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
)

// Lifecycle events for the trip state machine
const (
	eventStart    = "start"
	eventComplete = "complete"
	eventCancel   = "cancel"
	eventExpire   = "expire"
)

// newTripFSM builds the trip state machine positioned at the given status.
// Completed and cancelled are terminal: no event leaves them.
func newTripFSM(status models.TripStatus) *fsm.FSM {
	return fsm.NewFSM(
		string(status),
		fsm.Events{
			{Name: eventStart, Src: []string{string(models.TripStatusReserved)}, Dst: string(models.TripStatusActive)},
			{Name: eventComplete, Src: []string{string(models.TripStatusActive)}, Dst: string(models.TripStatusCompleted)},
			{Name: eventCancel, Src: []string{string(models.TripStatusReserved)}, Dst: string(models.TripStatusCancelled)},
			{Name: eventExpire, Src: []string{string(models.TripStatusReserved)}, Dst: string(models.TripStatusCancelled)},
		},
		fsm.Callbacks{},
	)
}

// canTransition reports whether the trip may take the given event
func canTransition(trip *models.Trip, event string) bool {
	return newTripFSM(trip.Status).Can(event)
}

// GetTrip returns a trip by id
func (uc *tripUC) GetTrip(ctx context.Context, tripID int64) (*models.Trip, error) {
	return uc.tripRepo.GetTripByID(ctx, tripID)
}

// StartTrip moves a reserved trip to active
func (uc *tripUC) StartTrip(ctx context.Context, tripID int64) (*models.Trip, error) {
	trip, err := uc.tripRepo.GetTripByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !canTransition(trip, eventStart) {
		return nil, apperr.Conflict("trip is not reserved")
	}

	started, err := uc.tripRepo.StartTrip(ctx, tripID, time.Now())
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Trip started",
		logger.Int64("trip_id", started.ID),
		logger.Int64("vehicle_id", started.VehicleID))

	if err := uc.fleetGW.PublishTripStarted(ctx, started); err != nil {
		logger.WarnCtx(ctx, "Failed to publish trip started event",
			logger.Int64("trip_id", started.ID),
			logger.Err(err))
	}

	return started, nil
}

// CompleteTrip moves an active trip to completed and records its totals
func (uc *tripUC) CompleteTrip(ctx context.Context, tripID int64, kmTotal float64) (*models.Trip, error) {
	if kmTotal < 0 {
		return nil, apperr.Invalid("km_total must not be negative")
	}

	trip, err := uc.tripRepo.GetTripByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !canTransition(trip, eventComplete) {
		return nil, apperr.Conflict("trip is not active")
	}
	if trip.StartedAt == nil {
		return nil, apperr.Conflict("trip is not active")
	}

	endedAt := time.Now()
	totals := computeTotals(trip, *trip.StartedAt, endedAt, kmTotal)

	completed, err := uc.tripRepo.CompleteTrip(ctx, tripID, endedAt, totals)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Trip completed",
		logger.Int64("trip_id", completed.ID),
		logger.Int64("vehicle_id", completed.VehicleID),
		logger.Float64("cost_total", totals.Cost))

	if err := uc.fleetGW.PublishTripCompleted(ctx, completed); err != nil {
		logger.WarnCtx(ctx, "Failed to publish trip completed event",
			logger.Int64("trip_id", completed.ID),
			logger.Err(err))
	}

	return completed, nil
}

// CancelTrip moves a reserved trip to cancelled on behalf of its owner
func (uc *tripUC) CancelTrip(ctx context.Context, userID, tripID int64) (*models.Trip, error) {
	trip, err := uc.tripRepo.GetTripByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.UserID != userID {
		return nil, apperr.Forbidden("trip belongs to another user")
	}
	if !canTransition(trip, eventCancel) {
		return nil, apperr.Conflict("trip is not reserved")
	}

	cancelled, err := uc.tripRepo.CancelTrip(ctx, tripID, time.Now())
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Trip cancelled",
		logger.Int64("trip_id", cancelled.ID),
		logger.Int64("user_id", userID))

	if err := uc.fleetGW.PublishTripCancelled(ctx, cancelled); err != nil {
		logger.WarnCtx(ctx, "Failed to publish trip cancelled event",
			logger.Int64("trip_id", cancelled.ID),
			logger.Err(err))
	}

	return cancelled, nil
}

// ExpireReservations cancels every reservation older than the configured TTL
func (uc *tripUC) ExpireReservations(ctx context.Context) ([]*models.Trip, error) {
	cutoff := time.Now().Add(-time.Duration(uc.cfg.Reservation.TTLMinutes) * time.Minute)

	expired, err := uc.tripRepo.ExpireReservations(ctx, cutoff)
	if err != nil {
		logger.ErrorCtx(ctx, "Failed to expire reservations", logger.Err(err))
		return nil, err
	}

	if len(expired) > 0 {
		logger.InfoCtx(ctx, "Expired stale reservations",
			logger.Int("count", len(expired)))
	}

	for _, trip := range expired {
		if err := uc.fleetGW.PublishTripCancelled(ctx, trip); err != nil {
			logger.WarnCtx(ctx, "Failed to publish trip cancelled event",
				logger.Int64("trip_id", trip.ID),
				logger.Err(err))
		}
	}

	return expired, nil
}

// computeTotals derives the trip totals from the pricing snapshot taken at
// reservation time. Partial minutes round up.
func computeTotals(trip *models.Trip, startedAt, endedAt time.Time, kmTotal float64) models.TripTotals {
	minutes := int(math.Ceil(endedAt.Sub(startedAt).Minutes()))
	if minutes < 0 {
		minutes = 0
	}

	cost := trip.UnlockFee + float64(minutes)*trip.PerMinute + kmTotal*trip.PerKm

	return models.TripTotals{
		Minutes: minutes,
		Km:      kmTotal,
		Cost:    cost,
	}
}
