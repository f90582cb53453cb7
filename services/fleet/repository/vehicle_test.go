package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanwheels/urbanwheels/internal/pkg/apperr"
	"github.com/urbanwheels/urbanwheels/internal/pkg/constants"
	"github.com/urbanwheels/urbanwheels/internal/pkg/database"
	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
)

func setupVehicleRepoTest(t *testing.T) (*VehicleRepo, sqlmock.Sqlmock, *miniredis.Miniredis, func()) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")

	mr, err := miniredis.Run()
	require.NoError(t, err)

	redisClient := database.NewRedisClientFrom(redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	}))

	repo := &VehicleRepo{
		cfg:   &models.Config{},
		db:    sqlxDB,
		redis: redisClient,
	}

	cleanup := func() {
		sqlxDB.Close()
		mr.Close()
	}

	return repo, mock, mr, cleanup
}

func vehicleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "code", "type_id", "type_code", "status",
		"lat", "lng", "battery_pct", "is_active",
		"unlock_fee", "per_minute", "per_km",
		"created_at", "updated_at",
	})
}

func TestVehicleRepo_Query(t *testing.T) {
	lat := 52.52
	lng := 13.405
	battery := 80

	testCases := []struct {
		name       string
		filter     models.VehicleFilter
		mockSetup  func(mock sqlmock.Sqlmock)
		assertFunc func(t *testing.T, vehicles []*models.Vehicle, err error)
	}{
		{
			name:   "No filters returns active vehicles only",
			filter: models.VehicleFilter{},
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := vehicleRows().
					AddRow(1, "UW-0001", 1, "scooter", "available", lat, lng, battery, true, 1.0, 0.25, 0.0, time.Now(), time.Now()).
					AddRow(2, "UW-0002", 1, "scooter", "reserved", lat, lng, battery, true, 1.0, 0.25, 0.0, time.Now(), time.Now())
				mock.ExpectQuery(`SELECT (.+) FROM vehicles v\s+JOIN vehicle_types vt ON vt.id = v.type_id\s+WHERE v.is_active = TRUE\s+ORDER BY v.id`).
					WillReturnRows(rows)
			},
			assertFunc: func(t *testing.T, vehicles []*models.Vehicle, err error) {
				assert.NoError(t, err)
				assert.Len(t, vehicles, 2)
				assert.Equal(t, int64(1), vehicles[0].ID)
				assert.Equal(t, "scooter", vehicles[0].TypeCode)
			},
		},
		{
			name: "Type, status and battery filters combine with AND",
			filter: models.VehicleFilter{
				TypeCode:   "scooter",
				Status:     models.VehicleStatusAvailable,
				MinBattery: &battery,
			},
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := vehicleRows().
					AddRow(3, "UW-0003", 1, "scooter", "available", lat, lng, 90, true, 1.0, 0.25, 0.0, time.Now(), time.Now())
				mock.ExpectQuery(`WHERE v.is_active = TRUE AND vt.code = \$1 AND v.status = \$2 AND v.battery_pct >= \$3`).
					WithArgs("scooter", models.VehicleStatusAvailable, battery).
					WillReturnRows(rows)
			},
			assertFunc: func(t *testing.T, vehicles []*models.Vehicle, err error) {
				assert.NoError(t, err)
				assert.Len(t, vehicles, 1)
				assert.Equal(t, "UW-0003", vehicles[0].Code)
			},
		},
		{
			name:   "Empty result is not an error",
			filter: models.VehicleFilter{TypeCode: "cargo-bike"},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM vehicles`).
					WithArgs("cargo-bike").
					WillReturnRows(vehicleRows())
			},
			assertFunc: func(t *testing.T, vehicles []*models.Vehicle, err error) {
				assert.NoError(t, err)
				assert.Empty(t, vehicles)
			},
		},
		{
			name:   "Database error",
			filter: models.VehicleFilter{},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM vehicles`).
					WillReturnError(errors.New("connection refused"))
			},
			assertFunc: func(t *testing.T, vehicles []*models.Vehicle, err error) {
				assert.Error(t, err)
				assert.Nil(t, vehicles)
				assert.Contains(t, err.Error(), "failed to query vehicles")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, _, cleanup := setupVehicleRepoTest(t)
			defer cleanup()

			tc.mockSetup(mock)

			vehicles, err := repo.Query(context.Background(), tc.filter)
			tc.assertFunc(t, vehicles, err)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestVehicleRepo_GetByID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo, mock, _, cleanup := setupVehicleRepoTest(t)
		defer cleanup()

		rows := vehicleRows().
			AddRow(7, "UW-0007", 2, "ebike", "available", 52.52, 13.405, 55, true, 0.5, 0.2, 0.0, time.Now(), time.Now())
		mock.ExpectQuery(`SELECT (.+) FROM vehicles v\s+JOIN vehicle_types vt ON vt.id = v.type_id\s+WHERE v.id = \$1`).
			WithArgs(int64(7)).
			WillReturnRows(rows)

		vehicle, err := repo.GetByID(context.Background(), 7)
		assert.NoError(t, err)
		require.NotNil(t, vehicle)
		assert.Equal(t, "UW-0007", vehicle.Code)
		assert.Equal(t, "ebike", vehicle.TypeCode)
		assert.True(t, vehicle.HasCoordinates())
	})

	t.Run("Not found", func(t *testing.T) {
		repo, mock, _, cleanup := setupVehicleRepoTest(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM vehicles`).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		vehicle, err := repo.GetByID(context.Background(), 99)
		assert.Nil(t, vehicle)
		assert.True(t, apperr.IsNotFound(err))
	})
}

func TestVehicleRepo_GetByCode(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo, mock, _, cleanup := setupVehicleRepoTest(t)
		defer cleanup()

		rows := vehicleRows().
			AddRow(7, "UW-0007", 2, "ebike", "available", nil, nil, nil, true, 0.5, 0.2, 0.0, time.Now(), time.Now())
		mock.ExpectQuery(`WHERE v.code = \$1`).
			WithArgs("UW-0007").
			WillReturnRows(rows)

		vehicle, err := repo.GetByCode(context.Background(), "UW-0007")
		assert.NoError(t, err)
		require.NotNil(t, vehicle)
		assert.Equal(t, int64(7), vehicle.ID)
		assert.False(t, vehicle.HasCoordinates())
	})

	t.Run("Not found", func(t *testing.T) {
		repo, mock, _, cleanup := setupVehicleRepoTest(t)
		defer cleanup()

		mock.ExpectQuery(`WHERE v.code = \$1`).
			WithArgs("UW-9999").
			WillReturnError(sql.ErrNoRows)

		vehicle, err := repo.GetByCode(context.Background(), "UW-9999")
		assert.Nil(t, vehicle)
		assert.True(t, apperr.IsNotFound(err))
	})
}

func TestVehicleRepo_ListTypes(t *testing.T) {
	repo, mock, _, cleanup := setupVehicleRepoTest(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "code", "name", "requires_license", "min_age", "max_speed_kmh"}).
		AddRow(1, "ebike", "Electric Bike", false, 16, 25).
		AddRow(2, "moped", "Moped", true, 18, 45)
	mock.ExpectQuery(`SELECT (.+) FROM vehicle_types\s+ORDER BY code`).
		WillReturnRows(rows)

	types, err := repo.ListTypes(context.Background())
	assert.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "ebike", types[0].Code)
	assert.True(t, types[1].RequiresLicense)
}

func TestVehicleRepo_UpdateTelemetry(t *testing.T) {
	t.Run("Success updates row and geo index", func(t *testing.T) {
		repo, mock, mr, cleanup := setupVehicleRepoTest(t)
		defer cleanup()

		battery := 72
		update := &models.TelemetryUpdate{
			VehicleID:  5,
			Lat:        52.52,
			Lng:        13.405,
			BatteryPct: &battery,
		}

		mock.ExpectExec(`UPDATE vehicles\s+SET lat = \$1`).
			WithArgs(update.Lat, update.Lng, update.BatteryPct, update.VehicleID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateTelemetry(context.Background(), update)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())

		// Geo index and telemetry hash refreshed, with a bounded lifetime
		assert.True(t, mr.Exists(constants.KeyVehicleGeo))
		telemetryKey := fmt.Sprintf(constants.KeyVehicleTelemetry, update.VehicleID)
		assert.True(t, mr.Exists(telemetryKey))
		assert.Equal(t, "72", mr.HGet(telemetryKey, constants.FieldBattery))
		assert.Equal(t, telemetryTTL, mr.TTL(telemetryKey))
	})

	t.Run("Unknown vehicle", func(t *testing.T) {
		repo, mock, mr, cleanup := setupVehicleRepoTest(t)
		defer cleanup()

		update := &models.TelemetryUpdate{VehicleID: 404, Lat: 1, Lng: 1}

		mock.ExpectExec(`UPDATE vehicles`).
			WithArgs(update.Lat, update.Lng, update.BatteryPct, update.VehicleID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateTelemetry(context.Background(), update)
		assert.True(t, apperr.IsNotFound(err))
		assert.False(t, mr.Exists(constants.KeyVehicleGeo))
	})

	t.Run("Inactive vehicle is evicted from the mirror", func(t *testing.T) {
		repo, mock, mr, cleanup := setupVehicleRepoTest(t)
		defer cleanup()

		ctx := context.Background()

		// Stale mirror entries from when the vehicle still reported
		require.NoError(t, repo.redis.GeoAdd(ctx, constants.KeyVehicleGeo, 13.405, 52.52, "404"))
		telemetryKey := fmt.Sprintf(constants.KeyVehicleTelemetry, int64(404))
		mr.HSet(telemetryKey, constants.FieldBattery, "50")

		update := &models.TelemetryUpdate{VehicleID: 404, Lat: 52.52, Lng: 13.405}
		mock.ExpectExec(`UPDATE vehicles`).
			WithArgs(update.Lat, update.Lng, update.BatteryPct, update.VehicleID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateTelemetry(ctx, update)
		assert.True(t, apperr.IsNotFound(err))
		assert.False(t, mr.Exists(constants.KeyVehicleGeo))
		assert.False(t, mr.Exists(telemetryKey))
	})

	t.Run("Redis failure does not fail the report", func(t *testing.T) {
		repo, mock, mr, cleanup := setupVehicleRepoTest(t)
		defer cleanup()

		update := &models.TelemetryUpdate{VehicleID: 5, Lat: 52.52, Lng: 13.405}

		mock.ExpectExec(`UPDATE vehicles`).
			WithArgs(update.Lat, update.Lng, update.BatteryPct, update.VehicleID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mr.Close()

		err := repo.UpdateTelemetry(context.Background(), update)
		assert.NoError(t, err)
	})
}
