package utils

import (
	"testing"

	"github.com/mmcloughlin/geohash"
	"github.com/stretchr/testify/assert"

	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestCalculateDistance(t *testing.T) {
	testCases := []struct {
		name      string
		point1    GeoPoint
		point2    GeoPoint
		expected  float64
		tolerance float64
	}{
		{
			name:      "Same point",
			point1:    GeoPoint{Latitude: 50.4501, Longitude: 30.5234},
			point2:    GeoPoint{Latitude: 50.4501, Longitude: 30.5234},
			expected:  0,
			tolerance: 0.000001,
		},
		{
			name:      "Kyiv center to Olimpiiska, about 2.2 km",
			point1:    GeoPoint{Latitude: 50.4501, Longitude: 30.5234},
			point2:    GeoPoint{Latitude: 50.4312, Longitude: 30.5163},
			expected:  2.16,
			tolerance: 0.1,
		},
		{
			name:      "Sub-100m distance stays stable",
			point1:    GeoPoint{Latitude: 50.450100, Longitude: 30.523400},
			point2:    GeoPoint{Latitude: 50.450500, Longitude: 30.523400},
			expected:  0.0445,
			tolerance: 0.001,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			distance := CalculateDistance(tc.point1, tc.point2)
			assert.InDelta(t, tc.expected, distance, tc.tolerance)
		})
	}
}

func TestWithinRadius(t *testing.T) {
	kyivCenter := &models.Vehicle{
		ID:  2,
		Lat: floatPtr(50.4501),
		Lng: floatPtr(30.5234),
	}

	t.Run("Inside 1km radius", func(t *testing.T) {
		assert.True(t, WithinRadius(kyivCenter, 50.45, 30.52, 1.0))
	})

	t.Run("Tiny radius from a point 5km away", func(t *testing.T) {
		// Roughly 5 km north of the vehicle
		assert.False(t, WithinRadius(kyivCenter, 50.4951, 30.5234, 0.001))
	})

	t.Run("Vehicle without coordinates is excluded", func(t *testing.T) {
		noCoords := &models.Vehicle{ID: 3}
		assert.False(t, WithinRadius(noCoords, 50.45, 30.52, 100))
	})

	t.Run("Boundary is inclusive", func(t *testing.T) {
		// Same point: distance 0 <= any radius
		assert.True(t, WithinRadius(kyivCenter, 50.4501, 30.5234, 0))
	})
}

func TestEncodeCoordinates(t *testing.T) {
	hash := EncodeCoordinates(50.4501, 30.5234, 9)
	assert.Len(t, hash, 9)

	lat, lng := geohash.Decode(hash)
	assert.InDelta(t, 50.4501, lat, 0.001)
	assert.InDelta(t, 30.5234, lng, 0.001)
}
