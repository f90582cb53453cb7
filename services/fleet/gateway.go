package fleet

import (
	"context"

	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
)

// FleetGW defines the interface for fleet gateway operations
// go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/urbanwheels/urbanwheels/services/fleet FleetGW
type FleetGW interface {
	PublishTripReserved(ctx context.Context, trip *models.Trip) error
	PublishTripStarted(ctx context.Context, trip *models.Trip) error
	PublishTripCompleted(ctx context.Context, trip *models.Trip) error
	PublishTripCancelled(ctx context.Context, trip *models.Trip) error
}
