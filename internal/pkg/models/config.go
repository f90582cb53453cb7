package models

// Config represents application configuration
type Config struct {
	App         AppConfig
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	NATS        NATSConfig
	JWT         JWTConfig
	APIKey      APIKeyConfig
	NewRelic    NewRelicConfig
	Logger      LoggerConfig
	Reservation ReservationConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NATSConfig contains NATS connection configuration
type NATSConfig struct {
	URL string
}

// JWTConfig contains JWT authentication configuration. Tokens are issued
// by the external identity service; only the shared secret is needed here.
type JWTConfig struct {
	Secret string
}

// APIKeyConfig holds the keys trusted for service-to-service calls
type APIKeyConfig struct {
	TelemetryService string
	OpsService       string
}

// Lookup returns the configured key for a service name, empty when unknown.
func (c *APIKeyConfig) Lookup(service string) string {
	switch service {
	case "telemetry-service":
		return c.TelemetryService
	case "ops-service":
		return c.OpsService
	}
	return ""
}

// NewRelicConfig contains New Relic APM configuration
type NewRelicConfig struct {
	LicenseKey  string
	AppName     string
	Enabled     bool
	ForwardLogs bool
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level    string
	FilePath string
}

// ReservationConfig contains reservation policy configuration
type ReservationConfig struct {
	TTLMinutes int // how long a reservation may sit before expiry sweeps cancel it
}
