package constants

// NATS subjects for trip lifecycle events
const (
	SubjectTripReserved  = "trip.reserved"
	SubjectTripStarted   = "trip.started"
	SubjectTripCompleted = "trip.completed"
	SubjectTripCancelled = "trip.cancelled"
)

// Redis keys
const (
	// KeyVehicleGeo is the geo set holding the last known position of every
	// active vehicle, keyed by vehicle id.
	KeyVehicleGeo = "fleet:vehicle:geo"
	// KeyVehicleTelemetry is the hash holding the last telemetry report for
	// a vehicle: fleet:vehicle:telemetry:{id}
	KeyVehicleTelemetry = "fleet:vehicle:telemetry:%d"
)

// Redis hash fields
const (
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
	FieldBattery   = "battery_pct"
	FieldGeohash   = "geohash"
	FieldTimestamp = "timestamp"
)
