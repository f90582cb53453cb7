package fleet

import (
	"context"

	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
)

// CatalogUC defines the interface for vehicle catalog business logic
// go:generate mockgen -destination=mocks/mock_usecase.go -package=mocks github.com/urbanwheels/urbanwheels/services/fleet CatalogUC,TripUC
type CatalogUC interface {
	QueryVehicles(ctx context.Context, filter models.VehicleFilter) ([]*models.Vehicle, error)
	GetVehicleByID(ctx context.Context, id int64) (*models.Vehicle, error)
	GetVehicleByCode(ctx context.Context, code string) (*models.Vehicle, error)
	ListVehicleTypes(ctx context.Context) ([]*models.VehicleType, error)
	UpdateTelemetry(ctx context.Context, update *models.TelemetryUpdate) error
}

// TripUC defines the interface for reservation and trip lifecycle logic
type TripUC interface {
	Reserve(ctx context.Context, userID, vehicleID int64) (*models.Trip, error)
	GetTrip(ctx context.Context, tripID int64) (*models.Trip, error)
	StartTrip(ctx context.Context, tripID int64) (*models.Trip, error)
	CompleteTrip(ctx context.Context, tripID int64, kmTotal float64) (*models.Trip, error)
	CancelTrip(ctx context.Context, userID, tripID int64) (*models.Trip, error)
	ExpireReservations(ctx context.Context) ([]*models.Trip, error)
}
