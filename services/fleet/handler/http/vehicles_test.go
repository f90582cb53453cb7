package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanwheels/urbanwheels/internal/pkg/apperr"
	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
	"github.com/urbanwheels/urbanwheels/internal/utils"
	"github.com/urbanwheels/urbanwheels/services/fleet/mocks"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = utils.NewRequestValidator()
	return e
}

func TestVehiclesHandler_ListVehicles(t *testing.T) {
	t.Run("Success with filters", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockCatalogUC := mocks.NewMockCatalogUC(ctrl)
		handler := NewVehiclesHandler(mockCatalogUC)

		lat := 52.52
		lng := 13.405
		vehicles := []*models.Vehicle{
			{ID: 1, Code: "UW-0001", TypeCode: "ebike", Status: models.VehicleStatusAvailable, Lat: &lat, Lng: &lng, IsActive: true},
		}

		mockCatalogUC.EXPECT().
			QueryVehicles(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ interface{}, filter models.VehicleFilter) ([]*models.Vehicle, error) {
				assert.Equal(t, "ebike", filter.TypeCode)
				assert.Equal(t, models.VehicleStatusAvailable, filter.Status)
				require.NotNil(t, filter.MinBattery)
				assert.Equal(t, 40, *filter.MinBattery)
				// 500 meters arrive as 0.5 km
				require.NotNil(t, filter.RadiusKm)
				assert.InDelta(t, 0.5, *filter.RadiusKm, 0.0001)
				return vehicles, nil
			})

		e := newTestEcho()
		req := httptest.NewRequest(http.MethodGet,
			"/api/vehicles?type=ebike&status=available&min_battery=40&lat=52.52&lng=13.405&radius=500", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.ListVehicles(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp utils.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})

	t.Run("Malformed numeric parameter", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockCatalogUC := mocks.NewMockCatalogUC(ctrl)
		handler := NewVehiclesHandler(mockCatalogUC)

		e := newTestEcho()
		req := httptest.NewRequest(http.MethodGet, "/api/vehicles?min_battery=high", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.ListVehicles(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Invalid filter maps to 400", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockCatalogUC := mocks.NewMockCatalogUC(ctrl)
		handler := NewVehiclesHandler(mockCatalogUC)

		mockCatalogUC.EXPECT().
			QueryVehicles(gomock.Any(), gomock.Any()).
			Return(nil, apperr.Invalid("unknown vehicle status: flying"))

		e := newTestEcho()
		req := httptest.NewRequest(http.MethodGet, "/api/vehicles?status=flying", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.ListVehicles(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVehiclesHandler_GetVehicle(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockCatalogUC := mocks.NewMockCatalogUC(ctrl)
		handler := NewVehiclesHandler(mockCatalogUC)

		mockCatalogUC.EXPECT().GetVehicleByID(gomock.Any(), int64(7)).
			Return(&models.Vehicle{ID: 7, Code: "UW-0007"}, nil)

		e := newTestEcho()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/vehicles/:id")
		c.SetParamNames("id")
		c.SetParamValues("7")

		err := handler.GetVehicle(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Not found maps to 404", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockCatalogUC := mocks.NewMockCatalogUC(ctrl)
		handler := NewVehiclesHandler(mockCatalogUC)

		mockCatalogUC.EXPECT().GetVehicleByID(gomock.Any(), int64(99)).
			Return(nil, apperr.NotFound("vehicle not found"))

		e := newTestEcho()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/vehicles/:id")
		c.SetParamNames("id")
		c.SetParamValues("99")

		err := handler.GetVehicle(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		var resp utils.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, "vehicle not found", resp.Error)
	})

	t.Run("Non-numeric id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockCatalogUC := mocks.NewMockCatalogUC(ctrl)
		handler := NewVehiclesHandler(mockCatalogUC)

		e := newTestEcho()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/vehicles/:id")
		c.SetParamNames("id")
		c.SetParamValues("abc")

		err := handler.GetVehicle(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVehiclesHandler_UpdateTelemetry(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockCatalogUC := mocks.NewMockCatalogUC(ctrl)
		handler := NewVehiclesHandler(mockCatalogUC)

		mockCatalogUC.EXPECT().
			UpdateTelemetry(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ interface{}, update *models.TelemetryUpdate) error {
				assert.Equal(t, int64(5), update.VehicleID)
				assert.InDelta(t, 52.52, update.Lat, 0.0001)
				return nil
			})

		body, _ := json.Marshal(map[string]interface{}{
			"lat": 52.52, "lng": 13.405, "battery_pct": 80,
		})
		e := newTestEcho()
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/internal/vehicles/:id/telemetry")
		c.SetParamNames("id")
		c.SetParamValues("5")

		err := handler.UpdateTelemetry(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Out of range coordinates rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockCatalogUC := mocks.NewMockCatalogUC(ctrl)
		handler := NewVehiclesHandler(mockCatalogUC)

		body, _ := json.Marshal(map[string]interface{}{
			"lat": 123.0, "lng": 13.405,
		})
		e := newTestEcho()
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/internal/vehicles/:id/telemetry")
		c.SetParamNames("id")
		c.SetParamValues("5")

		err := handler.UpdateTelemetry(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVehiclesHandler_ListVehicleTypes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCatalogUC := mocks.NewMockCatalogUC(ctrl)
	handler := NewVehiclesHandler(mockCatalogUC)

	mockCatalogUC.EXPECT().ListVehicleTypes(gomock.Any()).
		Return([]*models.VehicleType{{ID: 1, Code: "ebike", Name: "Electric Bike"}}, nil)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/vehicle-types", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.ListVehicleTypes(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}
