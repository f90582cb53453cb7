package utils

import (
	"math"

	"github.com/mmcloughlin/geohash"

	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
)

// GeoPoint represents a geographical point with latitude and longitude
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// EncodeCoordinates converts a coordinate pair to a geohash string
func EncodeCoordinates(latitude, longitude float64, precision uint) string {
	return geohash.EncodeWithPrecision(latitude, longitude, precision)
}

// CalculateDistance calculates the great-circle distance between two points
// in kilometers using the haversine formula.
func CalculateDistance(point1, point2 GeoPoint) float64 {
	// Earth's radius in kilometers
	const earthRadius = 6371.0

	lat1 := point1.Latitude * math.Pi / 180.0
	lon1 := point1.Longitude * math.Pi / 180.0
	lat2 := point2.Latitude * math.Pi / 180.0
	lon2 := point2.Longitude * math.Pi / 180.0

	dLat := lat2 - lat1
	dLon := lon2 - lon1
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// WithinRadius reports whether the vehicle lies within radiusKm of the given
// point. Vehicles without coordinates are always excluded.
func WithinRadius(vehicle *models.Vehicle, lat, lng, radiusKm float64) bool {
	if !vehicle.HasCoordinates() {
		return false
	}

	distance := CalculateDistance(
		GeoPoint{Latitude: *vehicle.Lat, Longitude: *vehicle.Lng},
		GeoPoint{Latitude: lat, Longitude: lng},
	)
	return distance <= radiusKm
}
