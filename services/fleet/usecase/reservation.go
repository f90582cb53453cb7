package usecase

import (
	"context"
	"time"

	"github.com/urbanwheels/urbanwheels/internal/pkg/apperr"
	"github.com/urbanwheels/urbanwheels/internal/pkg/logger"
	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
	"github.com/urbanwheels/urbanwheels/services/fleet"
)

// tripUC implements the fleet.TripUC interface
type tripUC struct {
	cfg         *models.Config
	vehicleRepo fleet.VehicleRepo
	tripRepo    fleet.TripRepo
	userRepo    fleet.UserRepo
	fleetGW     fleet.FleetGW
}

// NewTripUC creates a new trip use case
func NewTripUC(
	cfg *models.Config,
	vehicleRepo fleet.VehicleRepo,
	tripRepo fleet.TripRepo,
	userRepo fleet.UserRepo,
	fleetGW fleet.FleetGW,
) (fleet.TripUC, error) {
	return &tripUC{
		cfg:         cfg,
		vehicleRepo: vehicleRepo,
		tripRepo:    tripRepo,
		userRepo:    userRepo,
		fleetGW:     fleetGW,
	}, nil
}

// Reserve checks the reservation preconditions in order and, when they all
// hold, flips the vehicle to reserved and creates the trip atomically. The
// precondition reads give callers the most specific error first; the
// conditional update inside the repository remains the authority under
// concurrency.
func (uc *tripUC) Reserve(ctx context.Context, userID, vehicleID int64) (*models.Trip, error) {
	vehicle, err := uc.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !vehicle.IsActive {
		return nil, apperr.NotFound("vehicle not found")
	}

	if vehicle.Status != models.VehicleStatusAvailable {
		return nil, apperr.Conflict("vehicle unavailable")
	}

	hasOpen, err := uc.tripRepo.HasOpenTrip(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if hasOpen {
		return nil, apperr.Conflict("vehicle already reserved")
	}

	if err := uc.checkEligibility(ctx, userID, vehicle.TypeID); err != nil {
		return nil, err
	}

	trip, err := uc.tripRepo.ReserveVehicle(ctx, userID, vehicleID)
	if err != nil {
		if apperr.IsConflict(err) {
			logger.WarnCtx(ctx, "Lost reservation race",
				logger.Int64("vehicle_id", vehicleID),
				logger.Int64("user_id", userID))
		}
		return nil, err
	}

	logger.InfoCtx(ctx, "Vehicle reserved",
		logger.Int64("trip_id", trip.ID),
		logger.Int64("vehicle_id", vehicleID),
		logger.Int64("user_id", userID))

	// The reservation is already committed; a publish failure must not
	// undo it.
	if err := uc.fleetGW.PublishTripReserved(ctx, trip); err != nil {
		logger.WarnCtx(ctx, "Failed to publish trip reserved event",
			logger.Int64("trip_id", trip.ID),
			logger.Err(err))
	}

	return trip, nil
}

// checkEligibility verifies the rider may rent this class of vehicle
func (uc *tripUC) checkEligibility(ctx context.Context, userID, typeID int64) error {
	user, err := uc.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return apperr.Forbidden("account is disabled")
	}

	vehicleType, err := uc.vehicleRepo.GetTypeByID(ctx, typeID)
	if err != nil {
		return err
	}

	if vehicleType.RequiresLicense && !user.HasLicense {
		return apperr.Forbidden("a valid driving license is required for this vehicle type")
	}

	if vehicleType.MinAge > 0 {
		age := user.Age(time.Now())
		// An unknown birth date fails the age requirement.
		if age < vehicleType.MinAge {
			return apperr.Forbidden("minimum age requirement not met for this vehicle type")
		}
	}

	return nil
}
