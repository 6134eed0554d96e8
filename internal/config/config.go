package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	Logger LoggerConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	SchedulerIntervalSeconds int
	SeedOnStartup            bool
}

type LoggerConfig struct {
	Level string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "joyjoy-locums"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		Logger: LoggerConfig{
			Level: getenv("LOG_LEVEL", "info"),
		},
		DBType:                   getenv("DATABASE_TYPE", "postgres"),
		DBHost:                   getenv("DATABASE_HOST", "localhost"),
		DBPort:                   getenv("DATABASE_PORT", "5432"),
		DBName:                   getenv("DATABASE_NAME", "locums"),
		DBUser:                   getenv("DATABASE_USER", "postgres"),
		DBPassword:               getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:                getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:            getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:            getenvInt("DATABASE_MAX_OPEN_CONN", 10),
		DBConnMaxLifetime:        getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		SchedulerIntervalSeconds: getenvInt("SCHEDULER_INTERVAL_SECONDS", 300),
		SeedOnStartup:            getenvBool("SEED_ON_STARTUP", true),
	}
}

// Module wires application configuration.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewBillingConfigHolder),
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
