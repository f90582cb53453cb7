package newrelic

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/urbanwheels/urbanwheels/internal/pkg/logger"
	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
)

// InitNewRelic initializes the New Relic application based on configuration.
// Returns nil when disabled; all helpers tolerate a nil application.
func InitNewRelic(configs *models.Config) *newrelic.Application {
	if !configs.NewRelic.Enabled || configs.NewRelic.LicenseKey == "" {
		logger.Info("New Relic is disabled or license key not provided")
		return nil
	}

	nrApp, err := newrelic.NewApplication(
		newrelic.ConfigAppName(configs.NewRelic.AppName),
		newrelic.ConfigLicense(configs.NewRelic.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(configs.NewRelic.ForwardLogs),
		newrelic.ConfigAppLogDecoratingEnabled(true),
	)
	if err != nil {
		logger.Warn("Failed to initialize New Relic, continuing without New Relic",
			logger.Err(err))
		return nil
	}

	return nrApp
}

// Middleware starts a transaction per request and stores it in the request
// context so handlers and the logger can correlate with it.
func Middleware(nrApp *newrelic.Application) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if nrApp == nil {
				return next(c)
			}

			txn := nrApp.StartTransaction(c.Request().Method + " " + c.Path())
			defer txn.End()

			txn.SetWebRequestHTTP(c.Request())
			txn.SetWebResponse(c.Response().Writer)

			ctx := newrelic.NewContext(c.Request().Context(), txn)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// FromEchoContext retrieves the transaction for the current request, if any
func FromEchoContext(c echo.Context) *newrelic.Transaction {
	return newrelic.FromContext(c.Request().Context())
}

// SetTransactionName names the transaction; no-op on nil
func SetTransactionName(txn *newrelic.Transaction, name string) {
	if txn != nil {
		txn.SetName(name)
	}
}

// AddTransactionAttribute attaches a custom attribute; no-op on nil
func AddTransactionAttribute(txn *newrelic.Transaction, key string, value interface{}) {
	if txn != nil {
		txn.AddAttribute(key, value)
	}
}

// NoticeTransactionError records an error on the transaction; no-op on nil
func NoticeTransactionError(txn *newrelic.Transaction, err error) {
	if txn != nil && err != nil {
		txn.NoticeError(err)
	}
}
