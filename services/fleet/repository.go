package fleet

import (
	"context"
	"time"

	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
)

// VehicleRepo defines the interface for vehicle data access operations
// go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/urbanwheels/urbanwheels/services/fleet VehicleRepo,TripRepo,UserRepo
type VehicleRepo interface {
	Query(ctx context.Context, filter models.VehicleFilter) ([]*models.Vehicle, error)
	GetByID(ctx context.Context, id int64) (*models.Vehicle, error)
	GetByCode(ctx context.Context, code string) (*models.Vehicle, error)
	GetTypeByID(ctx context.Context, typeID int64) (*models.VehicleType, error)
	ListTypes(ctx context.Context) ([]*models.VehicleType, error)
	UpdateTelemetry(ctx context.Context, update *models.TelemetryUpdate) error
}

// TripRepo defines the interface for trip data access operations
type TripRepo interface {
	ReserveVehicle(ctx context.Context, userID, vehicleID int64) (*models.Trip, error)
	HasOpenTrip(ctx context.Context, vehicleID int64) (bool, error)
	GetTripByID(ctx context.Context, tripID int64) (*models.Trip, error)
	StartTrip(ctx context.Context, tripID int64, startedAt time.Time) (*models.Trip, error)
	CompleteTrip(ctx context.Context, tripID int64, endedAt time.Time, totals models.TripTotals) (*models.Trip, error)
	CancelTrip(ctx context.Context, tripID int64, endedAt time.Time) (*models.Trip, error)
	ExpireReservations(ctx context.Context, olderThan time.Time) ([]*models.Trip, error)
}

// UserRepo defines the interface for rider data access operations
type UserRepo interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}
