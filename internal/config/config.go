// Package config provides application configuration loaded from environment
// variables with defaults, named profiles, and validation. It centralizes
// server settings, database connection parameters, logging, rate limiting,
// and observability options.
//
// Profiles mirror the deployment environments the service runs in:
//   - "development": debug features on, development database name default
//   - "production":  debug off; Validate() enforces mandatory secrets
//   - "default":     alias for development
//
// The profile is chosen explicitly via LoadProfile, or from APP_ENV when the
// plain Load/MustLoad entry points are used.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Profile names accepted by LoadProfile and the APP_ENV variable.
const (
	ProfileDevelopment = "development"
	ProfileProduction  = "production"
	ProfileDefault     = "default"
)

// Database drivers supported by the database manager.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig holds the relational database connection parameters and the pool
// hints exposed to the manager. The manager itself reuses a single handle;
// pool size/recycle are applied to the underlying sql.DB as hints only.
type DBConfig struct {
	Driver   string // DB_DRIVER: mysql|sqlite
	Host     string // DB_HOST
	Port     int    // DB_PORT
	Name     string // DB_NAME
	User     string // DB_USER
	Password string // DB_PASSWORD
	Path     string // DB_PATH (sqlite only)

	PoolSize    int           // DB_POOL_SIZE
	PoolRecycle time.Duration // DB_POOL_RECYCLE
}

// DSN derives the driver connection string. For MySQL it requests utf8mb4,
// parsed time values, and UTC; autocommit is the driver default and left on.
func (d DBConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// Config holds all configuration values for the application.
type Config struct {
	// Profile is the resolved profile name (development|production).
	Profile string

	// App
	SecretKey string // SECRET_KEY
	Debug     bool   // APP_DEBUG

	// Server
	Host              string        // HOST (bind address)
	Port              string        // PORT, just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Database
	DB DBConfig

	// Rate limiting (form submissions)
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration for the APP_ENV profile and panics if
// validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration for the profile named by APP_ENV (falling back to
// the default profile when unset or unknown).
func Load() (Config, error) {
	return LoadProfile(os.Getenv("APP_ENV"))
}

// LoadProfile reads configuration from environment variables for the given
// profile, applies defaults, normalizes values, and validates the result.
// Unknown profile names resolve to the default (development) profile.
func LoadProfile(profile string) (Config, error) {
	profile = normalizeProfile(profile)

	dbName := getenv("DB_NAME", "webapp_db")
	debug := getbool("APP_DEBUG", false)
	if profile == ProfileDevelopment {
		dbName = getenv("DB_NAME", "webapp_dev_db")
		debug = getbool("APP_DEBUG", true)
	}

	cfg := Config{
		Profile: profile,

		// App
		SecretKey: getenv("SECRET_KEY", devSecretDefault(profile)),
		Debug:     debug,

		// Server
		Host:              getenv("HOST", "0.0.0.0"),
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// Database
		DB: DBConfig{
			Driver:      strings.ToLower(getenv("DB_DRIVER", DriverMySQL)),
			Host:        getenv("DB_HOST", "localhost"),
			Port:        getint("DB_PORT", 3306),
			Name:        dbName,
			User:        getenv("DB_USER", "webappuser"),
			Password:    getenv("DB_PASSWORD", "webapp_password"),
			Path:        getenv("DB_PATH", "app.db"),
			PoolSize:    getint("DB_POOL_SIZE", 5),
			PoolRecycle: getdur("DB_POOL_RECYCLE", time.Hour),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-intake-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DB.Driver {
	case DriverMySQL, DriverSQLite:
	default:
		return cfg, errors.New("DB_DRIVER must be one of: mysql, sqlite")
	}
	if cfg.DB.Driver == DriverMySQL {
		if strings.TrimSpace(cfg.DB.Host) == "" {
			return cfg, errors.New("DB_HOST must not be empty")
		}
		if cfg.DB.Port <= 0 || cfg.DB.Port > 65535 {
			return cfg, errors.New("DB_PORT must be a valid TCP port")
		}
		if strings.TrimSpace(cfg.DB.Name) == "" {
			return cfg, errors.New("DB_NAME must not be empty")
		}
	}
	if cfg.DB.Driver == DriverSQLite && strings.TrimSpace(cfg.DB.Path) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.DB.PoolSize < 1 {
		return cfg, errors.New("DB_POOL_SIZE must be >= 1")
	}
	if cfg.DB.PoolRecycle <= 0 {
		return cfg, errors.New("DB_POOL_RECYCLE must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// Validate enforces the production-only rules: SECRET_KEY and DB_PASSWORD
// must be provided by the environment. It is a no-op for other profiles.
func (c Config) Validate() error {
	if c.Profile != ProfileProduction {
		return nil
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("SECRET_KEY environment variable must be set in production")
	}
	if strings.TrimSpace(c.DB.Password) == "" {
		return errors.New("DB_PASSWORD environment variable must be set in production")
	}
	return nil
}

// normalizeProfile maps a raw profile string to a canonical profile name.
// Empty, "default", and unknown values all resolve to development.
func normalizeProfile(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case ProfileProduction:
		return ProfileProduction
	default:
		return ProfileDevelopment
	}
}

// devSecretDefault returns the fallback secret key. Production deliberately
// gets no fallback so that Validate() can catch a missing SECRET_KEY.
func devSecretDefault(profile string) string {
	if profile == ProfileProduction {
		return ""
	}
	return "dev-secret-key-change-in-production"
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
