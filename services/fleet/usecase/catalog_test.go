package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanwheels/urbanwheels/internal/pkg/apperr"
	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
	"github.com/urbanwheels/urbanwheels/services/fleet/mocks"
)

func vehicleAt(id int64, lat, lng float64) *models.Vehicle {
	return &models.Vehicle{
		ID:       id,
		Status:   models.VehicleStatusAvailable,
		Lat:      ptrFloat(lat),
		Lng:      ptrFloat(lng),
		IsActive: true,
	}
}

func TestQueryVehicles_NoGeoFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockVehicleRepo := mocks.NewMockVehicleRepo(ctrl)
	uc, err := NewCatalogUC(&models.Config{}, mockVehicleRepo)
	require.NoError(t, err)

	filter := models.VehicleFilter{TypeCode: "ebike", MinBattery: ptrInt(50)}
	expected := []*models.Vehicle{vehicleAt(1, 52.52, 13.405)}

	mockVehicleRepo.EXPECT().Query(gomock.Any(), filter).Return(expected, nil)

	vehicles, err := uc.QueryVehicles(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, expected, vehicles)
}

func TestQueryVehicles_GeoFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockVehicleRepo := mocks.NewMockVehicleRepo(ctrl)
	uc, err := NewCatalogUC(&models.Config{}, mockVehicleRepo)
	require.NoError(t, err)

	// Berlin Alexanderplatz as the search origin
	lat, lng, radius := 52.5219, 13.4132, 1.0
	filter := models.VehicleFilter{Lat: &lat, Lng: &lng, RadiusKm: &radius}

	near := vehicleAt(1, 52.5208, 13.4094)  // a few hundred meters away
	far := vehicleAt(2, 52.4675, 13.2846)   // Grunewald, well outside
	noPos := vehicleAt(3, 0, 0)
	noPos.Lat, noPos.Lng = nil, nil

	mockVehicleRepo.EXPECT().Query(gomock.Any(), filter).
		Return([]*models.Vehicle{near, far, noPos}, nil)

	vehicles, err := uc.QueryVehicles(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.Equal(t, int64(1), vehicles[0].ID)
}

func TestQueryVehicles_GeoFilterIgnoredWhenIncomplete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockVehicleRepo := mocks.NewMockVehicleRepo(ctrl)
	uc, err := NewCatalogUC(&models.Config{}, mockVehicleRepo)
	require.NoError(t, err)

	// Latitude without radius: the proximity predicate must not apply.
	lat := 52.52
	filter := models.VehicleFilter{Lat: &lat}
	expected := []*models.Vehicle{vehicleAt(1, 10, 10), vehicleAt(2, -10, -10)}

	mockVehicleRepo.EXPECT().Query(gomock.Any(), filter).Return(expected, nil)

	vehicles, err := uc.QueryVehicles(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, vehicles, 2)
}

func TestQueryVehicles_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockVehicleRepo := mocks.NewMockVehicleRepo(ctrl)
	uc, err := NewCatalogUC(&models.Config{}, mockVehicleRepo)
	require.NoError(t, err)

	badRadius := -5.0
	badBattery := 150

	testCases := []struct {
		name   string
		filter models.VehicleFilter
	}{
		{"Unknown status", models.VehicleFilter{Status: "flying"}},
		{"Negative radius", models.VehicleFilter{RadiusKm: &badRadius}},
		{"Battery out of range", models.VehicleFilter{MinBattery: &badBattery}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			vehicles, err := uc.QueryVehicles(context.Background(), tc.filter)
			assert.Nil(t, vehicles)
			assert.True(t, apperr.IsInvalid(err))
		})
	}
}

func TestQueryVehicles_RepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockVehicleRepo := mocks.NewMockVehicleRepo(ctrl)
	uc, err := NewCatalogUC(&models.Config{}, mockVehicleRepo)
	require.NoError(t, err)

	mockVehicleRepo.EXPECT().Query(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	vehicles, err := uc.QueryVehicles(context.Background(), models.VehicleFilter{})
	assert.Nil(t, vehicles)
	assert.Error(t, err)
}

func TestGetVehicleByCode_EmptyCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockVehicleRepo := mocks.NewMockVehicleRepo(ctrl)
	uc, err := NewCatalogUC(&models.Config{}, mockVehicleRepo)
	require.NoError(t, err)

	vehicle, err := uc.GetVehicleByCode(context.Background(), "")
	assert.Nil(t, vehicle)
	assert.True(t, apperr.IsInvalid(err))
}

func TestUpdateTelemetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockVehicleRepo := mocks.NewMockVehicleRepo(ctrl)
	uc, err := NewCatalogUC(&models.Config{}, mockVehicleRepo)
	require.NoError(t, err)

	update := &models.TelemetryUpdate{VehicleID: 5, Lat: 52.52, Lng: 13.405}
	mockVehicleRepo.EXPECT().UpdateTelemetry(gomock.Any(), update).Return(nil)

	assert.NoError(t, uc.UpdateTelemetry(context.Background(), update))

	mockVehicleRepo.EXPECT().UpdateTelemetry(gomock.Any(), update).
		Return(apperr.NotFound("vehicle not found"))
	assert.True(t, apperr.IsNotFound(uc.UpdateTelemetry(context.Background(), update)))
}
