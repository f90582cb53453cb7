package usecase

import (
	"context"

	"github.com/urbanwheels/urbanwheels/internal/pkg/apperr"
	"github.com/urbanwheels/urbanwheels/internal/pkg/logger"
	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
	"github.com/urbanwheels/urbanwheels/internal/utils"
	"github.com/urbanwheels/urbanwheels/services/fleet"
)

// catalogUC implements the fleet.CatalogUC interface
type catalogUC struct {
	cfg         *models.Config
	vehicleRepo fleet.VehicleRepo
}

// NewCatalogUC creates a new catalog use case
func NewCatalogUC(
	cfg *models.Config,
	vehicleRepo fleet.VehicleRepo,
) (fleet.CatalogUC, error) {
	return &catalogUC{
		cfg:         cfg,
		vehicleRepo: vehicleRepo,
	}, nil
}

// QueryVehicles returns active vehicles matching the filter. Attribute
// filters run in SQL; the proximity predicate runs in-process against the
// attribute-filtered set.
func (uc *catalogUC) QueryVehicles(ctx context.Context, filter models.VehicleFilter) ([]*models.Vehicle, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperr.Invalid("unknown vehicle status: " + string(filter.Status))
	}
	if filter.MinBattery != nil && (*filter.MinBattery < 0 || *filter.MinBattery > 100) {
		return nil, apperr.Invalid("battery filter must be between 0 and 100")
	}
	if filter.RadiusKm != nil && *filter.RadiusKm < 0 {
		return nil, apperr.Invalid("radius must not be negative")
	}

	vehicles, err := uc.vehicleRepo.Query(ctx, filter)
	if err != nil {
		logger.ErrorCtx(ctx, "Failed to query vehicles", logger.Err(err))
		return nil, err
	}

	if !filter.HasGeo() {
		return vehicles, nil
	}

	nearby := make([]*models.Vehicle, 0, len(vehicles))
	for _, vehicle := range vehicles {
		if utils.WithinRadius(vehicle, *filter.Lat, *filter.Lng, *filter.RadiusKm) {
			nearby = append(nearby, vehicle)
		}
	}

	return nearby, nil
}

// GetVehicleByID returns a single vehicle by id
func (uc *catalogUC) GetVehicleByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	return uc.vehicleRepo.GetByID(ctx, id)
}

// GetVehicleByCode returns a single vehicle by its printed unit code
func (uc *catalogUC) GetVehicleByCode(ctx context.Context, code string) (*models.Vehicle, error) {
	if code == "" {
		return nil, apperr.Invalid("vehicle code is required")
	}
	return uc.vehicleRepo.GetByCode(ctx, code)
}

// ListVehicleTypes returns all vehicle types
func (uc *catalogUC) ListVehicleTypes(ctx context.Context) ([]*models.VehicleType, error) {
	return uc.vehicleRepo.ListTypes(ctx)
}

// UpdateTelemetry records a position/battery report for a vehicle
func (uc *catalogUC) UpdateTelemetry(ctx context.Context, update *models.TelemetryUpdate) error {
	if err := uc.vehicleRepo.UpdateTelemetry(ctx, update); err != nil {
		if !apperr.IsNotFound(err) {
			logger.ErrorCtx(ctx, "Failed to record telemetry",
				logger.Int64("vehicle_id", update.VehicleID),
				logger.Err(err))
		}
		return err
	}

	logger.InfoCtx(ctx, "Recorded vehicle telemetry",
		logger.Int64("vehicle_id", update.VehicleID),
		logger.Float64("lat", update.Lat),
		logger.Float64("lng", update.Lng))
	return nil
}
