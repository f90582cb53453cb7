package models

import (
	"time"
)

// VehicleStatus represents the live status of a vehicle
type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "available"
	VehicleStatusReserved    VehicleStatus = "reserved"
	VehicleStatusInUse       VehicleStatus = "in_use"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusInactive    VehicleStatus = "inactive"
)

// Valid reports whether s is one of the known vehicle statuses.
func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleStatusAvailable, VehicleStatusReserved, VehicleStatusInUse,
		VehicleStatusMaintenance, VehicleStatusInactive:
		return true
	}
	return false
}

// Vehicle represents a rentable unit (car, bike, scooter or moped)
type Vehicle struct {
	ID         int64         `json:"id" db:"id"`
	Code       string        `json:"code" db:"code"`
	TypeID     int64         `json:"type_id" db:"type_id"`
	TypeCode   string        `json:"type" db:"type_code"`
	Status     VehicleStatus `json:"status" db:"status"`
	Lat        *float64      `json:"lat" db:"lat"`
	Lng        *float64      `json:"lng" db:"lng"`
	BatteryPct *int          `json:"battery_pct" db:"battery_pct"`
	IsActive   bool          `json:"is_active" db:"is_active"`
	UnlockFee  *float64      `json:"unlock_fee" db:"unlock_fee"`
	PerMinute  *float64      `json:"per_minute" db:"per_minute"`
	PerKm      *float64      `json:"per_km" db:"per_km"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"`
}

// HasCoordinates reports whether the vehicle has a known position.
func (v *Vehicle) HasCoordinates() bool {
	return v.Lat != nil && v.Lng != nil
}

// VehicleType describes a class of vehicles and the rules for renting one
type VehicleType struct {
	ID              int64  `json:"id" db:"id"`
	Code            string `json:"code" db:"code"`
	Name            string `json:"name" db:"name"`
	RequiresLicense bool   `json:"requires_license" db:"requires_license"`
	MinAge          int    `json:"min_age" db:"min_age"`
	MaxSpeedKmh     int    `json:"max_speed_kmh" db:"max_speed_kmh"`
}

// VehicleFilter holds the optional predicates for a catalog query.
// All set filters are combined with logical AND; inactive vehicles are
// always excluded regardless of the filter.
type VehicleFilter struct {
	TypeCode   string
	Status     VehicleStatus
	MinBattery *int
	Lat        *float64
	Lng        *float64
	RadiusKm   *float64
}

// HasGeo reports whether the proximity filter is fully specified.
// Lat, lng and radius must all be present or the geo filter is ignored.
func (f *VehicleFilter) HasGeo() bool {
	return f.Lat != nil && f.Lng != nil && f.RadiusKm != nil
}

// TelemetryUpdate carries a position/battery report for a vehicle
type TelemetryUpdate struct {
	VehicleID  int64   `json:"vehicle_id"`
	Lat        float64 `json:"lat" validate:"min=-90,max=90"`
	Lng        float64 `json:"lng" validate:"min=-180,max=180"`
	BatteryPct *int    `json:"battery_pct" validate:"omitempty,min=0,max=100"`
}
