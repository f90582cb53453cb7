package models

import (
	"time"
)

// TripStatus represents the lifecycle state of a trip
type TripStatus string

const (
	TripStatusReserved  TripStatus = "reserved"
	TripStatusActive    TripStatus = "active"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

// Terminal reports whether the status is an end state of the lifecycle.
func (s TripStatus) Terminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// Trip represents one rental lifecycle instance binding a user and a vehicle.
// The pricing columns are a snapshot copied from the vehicle at reservation
// time so later price changes never affect open or past trips.
type Trip struct {
	ID        int64      `json:"id" db:"id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	VehicleID int64      `json:"vehicle_id" db:"vehicle_id"`
	Status    TripStatus `json:"status" db:"status"`

	ReservedAt time.Time  `json:"reserved_at" db:"reserved_at"`
	StartedAt  *time.Time `json:"started_at" db:"started_at"`
	EndedAt    *time.Time `json:"ended_at" db:"ended_at"`

	UnlockFee float64 `json:"unlock_fee" db:"unlock_fee"`
	PerMinute float64 `json:"per_minute" db:"per_minute"`
	PerKm     float64 `json:"per_km" db:"per_km"`

	MinutesTotal *int     `json:"minutes_total" db:"minutes_total"`
	KmTotal      *float64 `json:"km_total" db:"km_total"`
	CostTotal    *float64 `json:"cost_total" db:"cost_total"`
}

// TripTotals holds the derived totals computed once at completion
type TripTotals struct {
	Minutes int
	Km      float64
	Cost    float64
}

// CompleteTripRequest is the payload for completing an active trip
type CompleteTripRequest struct {
	KmTotal float64 `json:"km_total" validate:"min=0"`
}

// TripEvent is published to the message bus on every lifecycle transition
type TripEvent struct {
	TripID    int64      `json:"trip_id"`
	VehicleID int64      `json:"vehicle_id"`
	UserID    int64      `json:"user_id"`
	Status    TripStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
}
