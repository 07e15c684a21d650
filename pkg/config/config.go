package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Driver     DriverConfig
	Bus        BusConfig
	Sweep      SweepConfig
	Billing    BillingConfig
	Location   LocationConfig
	Dashboard  DashboardConfig
	Attendance AttendanceConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DriverConfig identifies the single driver account served by this instance.
// PINHash takes precedence when set; otherwise PIN is hashed at startup.
type DriverConfig struct {
	ID      string
	Name    string
	PIN     string
	PINHash string
}

// BusConfig seeds the bus identity. One bus per running instance.
type BusConfig struct {
	ID       string
	Number   string
	Capacity int
	Route    string
	SeedDemo bool
}

// SweepConfig controls the overdue-payment background sweep.
type SweepConfig struct {
	Interval time.Duration
}

// BillingConfig sets the fixed billing cycle applied on payment.
type BillingConfig struct {
	CycleDays int
}

// LocationConfig tunes the position watch cadence requested from providers.
type LocationConfig struct {
	WatchInterval time.Duration
	WatchDistance float64
}

// DashboardConfig governs summary caching.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// AttendanceConfig controls the default history window returned to clients.
type AttendanceConfig struct {
	DisplayLimit int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Driver = DriverConfig{
		ID:      v.GetString("DRIVER_ID"),
		Name:    v.GetString("DRIVER_NAME"),
		PIN:     v.GetString("DRIVER_PIN"),
		PINHash: v.GetString("DRIVER_PIN_HASH"),
	}

	cfg.Bus = BusConfig{
		ID:       v.GetString("BUS_ID"),
		Number:   v.GetString("BUS_NUMBER"),
		Capacity: v.GetInt("BUS_CAPACITY"),
		Route:    v.GetString("BUS_ROUTE"),
		SeedDemo: v.GetBool("SEED_DEMO_ROSTER"),
	}

	cfg.Sweep = SweepConfig{
		Interval: parseDuration(v.GetString("SWEEP_INTERVAL"), time.Hour),
	}

	cycleDays := v.GetInt("BILLING_CYCLE_DAYS")
	if cycleDays <= 0 {
		cycleDays = 30
	}
	cfg.Billing = BillingConfig{CycleDays: cycleDays}

	cfg.Location = LocationConfig{
		WatchInterval: parseDuration(v.GetString("LOCATION_WATCH_INTERVAL"), 5*time.Second),
		WatchDistance: v.GetFloat64("LOCATION_WATCH_DISTANCE_METERS"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheEnabled: v.GetBool("ENABLE_DASHBOARD_CACHE"),
		CacheTTL:     parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 30*time.Second),
	}

	displayLimit := v.GetInt("ATTENDANCE_DISPLAY_LIMIT")
	if displayLimit <= 0 {
		displayLimit = 5
	}
	cfg.Attendance = AttendanceConfig{DisplayLimit: displayLimit}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "bus-tracker-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DRIVER_ID", "driver-001")
	v.SetDefault("DRIVER_NAME", "Michael Anderson")
	// Deployments set DRIVER_PIN_HASH (bcrypt). With no hash configured the
	// plain PIN is hashed at startup so local development works out of the box.
	v.SetDefault("DRIVER_PIN", "0000")
	v.SetDefault("DRIVER_PIN_HASH", "")

	v.SetDefault("BUS_ID", "bus-001")
	v.SetDefault("BUS_NUMBER", "Bus #42")
	v.SetDefault("BUS_CAPACITY", 45)
	v.SetDefault("BUS_ROUTE", "Route A - North District")
	v.SetDefault("SEED_DEMO_ROSTER", false)

	v.SetDefault("SWEEP_INTERVAL", "1h")
	v.SetDefault("BILLING_CYCLE_DAYS", 30)

	v.SetDefault("LOCATION_WATCH_INTERVAL", "5s")
	v.SetDefault("LOCATION_WATCH_DISTANCE_METERS", 10)

	v.SetDefault("ENABLE_DASHBOARD_CACHE", false)
	v.SetDefault("DASHBOARD_CACHE_TTL", "30s")

	v.SetDefault("ATTENDANCE_DISPLAY_LIMIT", 5)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
