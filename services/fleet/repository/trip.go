package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/urbanwheels/urbanwheels/internal/pkg/apperr"
	"github.com/urbanwheels/urbanwheels/internal/pkg/logger"
	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
)

const tripColumns = `
	id, user_id, vehicle_id, status,
	reserved_at, started_at, ended_at,
	unlock_fee, per_minute, per_km,
	minutes_total, km_total, cost_total`

// TripRepo provides trip data access backed by Postgres
type TripRepo struct {
	cfg *models.Config
	db  *sqlx.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(
	cfg *models.Config,
	db *sqlx.DB,
) *TripRepo {
	return &TripRepo{
		cfg: cfg,
		db:  db,
	}
}

// ReserveVehicle atomically flips an available vehicle to reserved and
// creates the trip in the same transaction. The conditional UPDATE is the
// serialization point: under concurrent reservations exactly one caller
// observes status = 'available' and wins.
func (r *TripRepo) ReserveVehicle(ctx context.Context, userID, vehicleID int64) (*models.Trip, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin reservation transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE vehicles
		SET status = 'reserved', updated_at = NOW()
		WHERE id = $1 AND status = 'available' AND is_active = TRUE`,
		vehicleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve vehicle %d: %w", vehicleID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read reservation result: %w", err)
	}
	if rows == 0 {
		return nil, apperr.Conflict("vehicle already reserved")
	}

	// A reserved vehicle must never carry two open trips.
	var hasOpen bool
	err = tx.GetContext(ctx, &hasOpen, `
		SELECT EXISTS (
			SELECT 1 FROM trips
			WHERE vehicle_id = $1 AND status IN ('reserved', 'active')
		)`,
		vehicleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to check open trips for vehicle %d: %w", vehicleID, err)
	}
	if hasOpen {
		return nil, apperr.Conflict("vehicle already reserved")
	}

	// The pricing snapshot comes from the vehicle row itself. An unset
	// component prices as zero.
	var unlockFee, perMinute, perKm sql.NullFloat64
	err = tx.QueryRowContext(ctx, `
		SELECT unlock_fee, per_minute, per_km
		FROM vehicles
		WHERE id = $1`,
		vehicleID,
	).Scan(&unlockFee, &perMinute, &perKm)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot pricing for vehicle %d: %w", vehicleID, err)
	}

	trip := &models.Trip{
		UserID:    userID,
		VehicleID: vehicleID,
		Status:    models.TripStatusReserved,
		UnlockFee: unlockFee.Float64,
		PerMinute: perMinute.Float64,
		PerKm:     perKm.Float64,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO trips (user_id, vehicle_id, status, reserved_at, unlock_fee, per_minute, per_km)
		VALUES ($1, $2, 'reserved', NOW(), $3, $4, $5)
		RETURNING id, reserved_at`,
		userID, vehicleID, trip.UnlockFee, trip.PerMinute, trip.PerKm,
	).Scan(&trip.ID, &trip.ReservedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create trip for vehicle %d: %w", vehicleID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reservation: %w", err)
	}

	return trip, nil
}

// setVehicleStatus moves a vehicle between lifecycle states inside the
// trip transaction. A zero row count means the vehicle row was not in the
// expected state; the mismatch is logged and the trip transition proceeds.
func (r *TripRepo) setVehicleStatus(ctx context.Context, tx *sqlx.Tx, vehicleID int64, from, to string) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE vehicles
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`,
		to, vehicleID, from,
	)
	if err != nil {
		return fmt.Errorf("failed to move vehicle %d to %s: %w", vehicleID, to, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read vehicle update result for %d: %w", vehicleID, err)
	}
	if rows == 0 {
		logger.WarnCtx(ctx, "Vehicle status out of step with trip transition",
			logger.Int64("vehicle_id", vehicleID),
			logger.String("expected_status", from),
			logger.String("target_status", to))
	}

	return nil
}

// HasOpenTrip reports whether the vehicle has a reserved or active trip
func (r *TripRepo) HasOpenTrip(ctx context.Context, vehicleID int64) (bool, error) {
	var hasOpen bool
	err := r.db.GetContext(ctx, &hasOpen, `
		SELECT EXISTS (
			SELECT 1 FROM trips
			WHERE vehicle_id = $1 AND status IN ('reserved', 'active')
		)`,
		vehicleID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to check open trips for vehicle %d: %w", vehicleID, err)
	}
	return hasOpen, nil
}

// GetTripByID retrieves a trip by id
func (r *TripRepo) GetTripByID(ctx context.Context, tripID int64) (*models.Trip, error) {
	query := fmt.Sprintf(`SELECT %s FROM trips WHERE id = $1`, tripColumns)

	trip := &models.Trip{}
	err := r.db.GetContext(ctx, trip, query, tripID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("trip not found")
		}
		return nil, fmt.Errorf("failed to get trip %d: %w", tripID, err)
	}

	return trip, nil
}

// StartTrip moves a reserved trip to active and the vehicle to in_use
func (r *TripRepo) StartTrip(ctx context.Context, tripID int64, startedAt time.Time) (*models.Trip, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin start transaction: %w", err)
	}
	defer tx.Rollback()

	trip := &models.Trip{}
	err = tx.GetContext(ctx, trip, fmt.Sprintf(`
		UPDATE trips
		SET status = 'active', started_at = $2
		WHERE id = $1 AND status = 'reserved'
		RETURNING %s`, tripColumns),
		tripID, startedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.Conflict("trip is not reserved")
		}
		return nil, fmt.Errorf("failed to start trip %d: %w", tripID, err)
	}

	if err := r.setVehicleStatus(ctx, tx, trip.VehicleID, "reserved", "in_use"); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit trip start: %w", err)
	}

	return trip, nil
}

// CompleteTrip moves an active trip to completed, records its totals and
// releases the vehicle back to available.
func (r *TripRepo) CompleteTrip(ctx context.Context, tripID int64, endedAt time.Time, totals models.TripTotals) (*models.Trip, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin completion transaction: %w", err)
	}
	defer tx.Rollback()

	trip := &models.Trip{}
	err = tx.GetContext(ctx, trip, fmt.Sprintf(`
		UPDATE trips
		SET status = 'completed', ended_at = $2,
		    minutes_total = $3, km_total = $4, cost_total = $5
		WHERE id = $1 AND status = 'active'
		RETURNING %s`, tripColumns),
		tripID, endedAt, totals.Minutes, totals.Km, totals.Cost,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.Conflict("trip is not active")
		}
		return nil, fmt.Errorf("failed to complete trip %d: %w", tripID, err)
	}

	if err := r.setVehicleStatus(ctx, tx, trip.VehicleID, "in_use", "available"); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit trip completion: %w", err)
	}

	return trip, nil
}

// CancelTrip moves a reserved trip to cancelled and releases the vehicle
func (r *TripRepo) CancelTrip(ctx context.Context, tripID int64, endedAt time.Time) (*models.Trip, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin cancel transaction: %w", err)
	}
	defer tx.Rollback()

	trip := &models.Trip{}
	err = tx.GetContext(ctx, trip, fmt.Sprintf(`
		UPDATE trips
		SET status = 'cancelled', ended_at = $2
		WHERE id = $1 AND status = 'reserved'
		RETURNING %s`, tripColumns),
		tripID, endedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.Conflict("trip is not reserved")
		}
		return nil, fmt.Errorf("failed to cancel trip %d: %w", tripID, err)
	}

	if err := r.setVehicleStatus(ctx, tx, trip.VehicleID, "reserved", "available"); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit trip cancellation: %w", err)
	}

	return trip, nil
}

// ExpireReservations cancels every reservation older than the cutoff and
// releases the affected vehicles. Returns the trips that were expired.
func (r *TripRepo) ExpireReservations(ctx context.Context, olderThan time.Time) ([]*models.Trip, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin expiry transaction: %w", err)
	}
	defer tx.Rollback()

	var trips []*models.Trip
	err = tx.SelectContext(ctx, &trips, fmt.Sprintf(`
		UPDATE trips
		SET status = 'cancelled', ended_at = NOW()
		WHERE status = 'reserved' AND reserved_at < $1
		RETURNING %s`, tripColumns),
		olderThan,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to expire reservations: %w", err)
	}

	if len(trips) == 0 {
		return nil, tx.Commit()
	}

	vehicleIDs := make([]int64, 0, len(trips))
	for _, trip := range trips {
		vehicleIDs = append(vehicleIDs, trip.VehicleID)
	}

	query, args, err := sqlx.In(`
		UPDATE vehicles
		SET status = 'available', updated_at = NOW()
		WHERE id IN (?) AND status = 'reserved'`,
		vehicleIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build vehicle release query: %w", err)
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to release expired vehicles: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows != int64(len(vehicleIDs)) {
		logger.WarnCtx(ctx, "Some expired vehicles were not in reserved state",
			logger.Int("expected", len(vehicleIDs)),
			logger.Int64("released", rows))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reservation expiry: %w", err)
	}

	return trips, nil
}
