package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/urbanwheels/urbanwheels/internal/pkg/constants"
	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
	natspkg "github.com/urbanwheels/urbanwheels/internal/pkg/nats"
	"github.com/urbanwheels/urbanwheels/services/fleet"
)

// FleetGW handles NATS publishing for trip lifecycle events
type FleetGW struct {
	natsClient *natspkg.Client
}

// NewFleetGW creates a new fleet gateway
func NewFleetGW(client *natspkg.Client) fleet.FleetGW {
	return &FleetGW{
		natsClient: client,
	}
}

func (g *FleetGW) publishTripEvent(subject string, trip *models.Trip) error {
	event := models.TripEvent{
		TripID:    trip.ID,
		VehicleID: trip.VehicleID,
		UserID:    trip.UserID,
		Status:    trip.Status,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal trip event: %w", err)
	}

	return g.natsClient.Publish(subject, data)
}

// PublishTripReserved publishes a trip reserved event to NATS
func (g *FleetGW) PublishTripReserved(ctx context.Context, trip *models.Trip) error {
	return g.publishTripEvent(constants.SubjectTripReserved, trip)
}

// PublishTripStarted publishes a trip started event to NATS
func (g *FleetGW) PublishTripStarted(ctx context.Context, trip *models.Trip) error {
	return g.publishTripEvent(constants.SubjectTripStarted, trip)
}

// PublishTripCompleted publishes a trip completed event to NATS
func (g *FleetGW) PublishTripCompleted(ctx context.Context, trip *models.Trip) error {
	return g.publishTripEvent(constants.SubjectTripCompleted, trip)
}

// PublishTripCancelled publishes a trip cancelled event to NATS
func (g *FleetGW) PublishTripCancelled(ctx context.Context, trip *models.Trip) error {
	return g.publishTripEvent(constants.SubjectTripCancelled, trip)
}
