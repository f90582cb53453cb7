package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/urbanwheels/urbanwheels/internal/pkg/apperr"
	"github.com/urbanwheels/urbanwheels/internal/pkg/constants"
	"github.com/urbanwheels/urbanwheels/internal/pkg/database"
	"github.com/urbanwheels/urbanwheels/internal/pkg/logger"
	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
	"github.com/urbanwheels/urbanwheels/internal/utils"
)

const vehicleColumns = `
	v.id, v.code, v.type_id, vt.code AS type_code, v.status,
	v.lat, v.lng, v.battery_pct, v.is_active,
	v.unlock_fee, v.per_minute, v.per_km,
	v.created_at, v.updated_at`

// telemetryTTL bounds how long a cached telemetry report outlives the last
// position ping.
const telemetryTTL = 24 * time.Hour

// VehicleRepo provides vehicle data access backed by Postgres, with the
// live geo index mirrored into Redis.
type VehicleRepo struct {
	cfg   *models.Config
	db    *sqlx.DB
	redis *database.RedisClient
}

// NewVehicleRepository creates a new vehicle repository
func NewVehicleRepository(
	cfg *models.Config,
	db *sqlx.DB,
	redisClient *database.RedisClient,
) *VehicleRepo {
	return &VehicleRepo{
		cfg:   cfg,
		db:    db,
		redis: redisClient,
	}
}

// Query returns active vehicles matching the filter, ordered by id.
// All set predicates combine with AND; inactive vehicles never appear.
func (r *VehicleRepo) Query(ctx context.Context, filter models.VehicleFilter) ([]*models.Vehicle, error) {
	var (
		conditions = []string{"v.is_active = TRUE"}
		args       []interface{}
	)

	if filter.TypeCode != "" {
		args = append(args, filter.TypeCode)
		conditions = append(conditions, fmt.Sprintf("vt.code = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("v.status = $%d", len(args)))
	}
	if filter.MinBattery != nil {
		args = append(args, *filter.MinBattery)
		conditions = append(conditions, fmt.Sprintf("v.battery_pct >= $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM vehicles v
		JOIN vehicle_types vt ON vt.id = v.type_id
		WHERE %s
		ORDER BY v.id`, vehicleColumns, strings.Join(conditions, " AND "))

	var vehicles []*models.Vehicle
	if err := r.db.SelectContext(ctx, &vehicles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query vehicles: %w", err)
	}

	return vehicles, nil
}

// GetByID retrieves a vehicle by its numeric id
func (r *VehicleRepo) GetByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM vehicles v
		JOIN vehicle_types vt ON vt.id = v.type_id
		WHERE v.id = $1`, vehicleColumns)

	vehicle := &models.Vehicle{}
	err := r.db.GetContext(ctx, vehicle, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("vehicle not found")
		}
		return nil, fmt.Errorf("failed to get vehicle %d: %w", id, err)
	}

	return vehicle, nil
}

// GetByCode retrieves a vehicle by its printed unit code
func (r *VehicleRepo) GetByCode(ctx context.Context, code string) (*models.Vehicle, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM vehicles v
		JOIN vehicle_types vt ON vt.id = v.type_id
		WHERE v.code = $1`, vehicleColumns)

	vehicle := &models.Vehicle{}
	err := r.db.GetContext(ctx, vehicle, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("vehicle not found")
		}
		return nil, fmt.Errorf("failed to get vehicle %s: %w", code, err)
	}

	return vehicle, nil
}

// GetTypeByID retrieves a vehicle type by id
func (r *VehicleRepo) GetTypeByID(ctx context.Context, typeID int64) (*models.VehicleType, error) {
	query := `
		SELECT id, code, name, requires_license, min_age, max_speed_kmh
		FROM vehicle_types
		WHERE id = $1`

	vt := &models.VehicleType{}
	err := r.db.GetContext(ctx, vt, query, typeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("vehicle type not found")
		}
		return nil, fmt.Errorf("failed to get vehicle type %d: %w", typeID, err)
	}

	return vt, nil
}

// ListTypes returns all vehicle types ordered by code
func (r *VehicleRepo) ListTypes(ctx context.Context) ([]*models.VehicleType, error) {
	query := `
		SELECT id, code, name, requires_license, min_age, max_speed_kmh
		FROM vehicle_types
		ORDER BY code`

	var types []*models.VehicleType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("failed to list vehicle types: %w", err)
	}

	return types, nil
}

// UpdateTelemetry persists a position/battery report and refreshes the
// Redis geo index so proximity lookups stay current.
func (r *VehicleRepo) UpdateTelemetry(ctx context.Context, update *models.TelemetryUpdate) error {
	query := `
		UPDATE vehicles
		SET lat = $1,
		    lng = $2,
		    battery_pct = COALESCE($3, battery_pct),
		    updated_at = NOW()
		WHERE id = $4 AND is_active = TRUE`

	result, err := r.db.ExecContext(ctx, query, update.Lat, update.Lng, update.BatteryPct, update.VehicleID)
	if err != nil {
		return fmt.Errorf("failed to update telemetry for vehicle %d: %w", update.VehicleID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read telemetry update result: %w", err)
	}
	if rows == 0 {
		// A vehicle that no longer accepts telemetry must not linger in
		// the geo index either.
		r.evictFromGeoIndex(ctx, update.VehicleID)
		return apperr.NotFound("vehicle not found")
	}

	// The Redis mirror is best effort; Postgres remains the source of truth.
	member := fmt.Sprintf("%d", update.VehicleID)
	if err := r.redis.GeoAdd(ctx, constants.KeyVehicleGeo, update.Lng, update.Lat, member); err != nil {
		logger.WarnCtx(ctx, "Failed to update vehicle geo index",
			logger.Int64("vehicle_id", update.VehicleID),
			logger.Err(err))
		return nil
	}

	fields := map[string]interface{}{
		constants.FieldLatitude:  update.Lat,
		constants.FieldLongitude: update.Lng,
		constants.FieldGeohash:   utils.EncodeCoordinates(update.Lat, update.Lng, 9),
		constants.FieldTimestamp: time.Now().Unix(),
	}
	if update.BatteryPct != nil {
		fields[constants.FieldBattery] = *update.BatteryPct
	}

	telemetryKey := fmt.Sprintf(constants.KeyVehicleTelemetry, update.VehicleID)
	if err := r.redis.HMSet(ctx, telemetryKey, fields); err != nil {
		logger.WarnCtx(ctx, "Failed to cache vehicle telemetry",
			logger.Int64("vehicle_id", update.VehicleID),
			logger.Err(err))
		return nil
	}

	// The cached report ages out when a vehicle stops pinging.
	if err := r.redis.Expire(ctx, telemetryKey, telemetryTTL); err != nil {
		logger.WarnCtx(ctx, "Failed to set telemetry cache TTL",
			logger.Int64("vehicle_id", update.VehicleID),
			logger.Err(err))
	}

	return nil
}

// evictFromGeoIndex drops the vehicle from the Redis mirror so proximity
// lookups stop seeing it.
func (r *VehicleRepo) evictFromGeoIndex(ctx context.Context, vehicleID int64) {
	member := fmt.Sprintf("%d", vehicleID)
	if err := r.redis.GeoRemove(ctx, constants.KeyVehicleGeo, member); err != nil {
		logger.WarnCtx(ctx, "Failed to remove vehicle from geo index",
			logger.Int64("vehicle_id", vehicleID),
			logger.Err(err))
	}

	telemetryKey := fmt.Sprintf(constants.KeyVehicleTelemetry, vehicleID)
	if err := r.redis.Delete(ctx, telemetryKey); err != nil {
		logger.WarnCtx(ctx, "Failed to drop cached vehicle telemetry",
			logger.Int64("vehicle_id", vehicleID),
			logger.Err(err))
	}
}
