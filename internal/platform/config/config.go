package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvProduction  = "production"
	EnvDevelopment = "development"

	defaultJWTSecret = "your-secret-key-change-in-production"
)

type Config struct {
	APIPort  string
	AppEnv   string
	LogLevel string
	JWTKey   []byte

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string
	SQLitePath string

	MigrateOnStart bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LoginMaxAttempts   int
	LoginAttemptWindow time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		APIPort:  getEnv("API_PORT", "3000"),
		AppEnv:   strings.ToLower(getEnv("APP_ENV", EnvDevelopment)),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		JWTKey:   []byte(getEnv("JWT_SECRET", defaultJWTSecret)),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "finance_system"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "./data/finance.db"),

		MigrateOnStart: getEnvAsBool("MIGRATE_ON_START", true),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		LoginMaxAttempts:   getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginAttemptWindow: getEnvAsDuration("LOGIN_ATTEMPT_WINDOW", 15*time.Minute),
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return c.SQLitePath
	}
	return c.DBConnStr
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.APIPort); err != nil {
		problems = append(problems, fmt.Sprintf("invalid API_PORT '%s': must be a number", c.APIPort))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid API_PORT %d: must be between 1 and 65535", port))
	}

	switch c.DBDriver {
	case DriverPostgres:
		if c.DBHost == "" || c.DBName == "" {
			problems = append(problems, "DB_HOST and DB_NAME are required for the postgres driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			problems = append(problems, "SQLITE_PATH is required for the sqlite driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid DB_DRIVER '%s': must be one of %s, %s", c.DBDriver, DriverPostgres, DriverSQLite))
	}

	if len(c.JWTKey) == 0 {
		problems = append(problems, "JWT_SECRET must not be empty")
	} else if c.IsProduction() && string(c.JWTKey) == defaultJWTSecret {
		problems = append(problems, "JWT_SECRET must be set in production")
	}

	if c.LoginMaxAttempts < 1 {
		problems = append(problems, "LOGIN_MAX_ATTEMPTS must be at least 1")
	}
	if c.LoginAttemptWindow <= 0 {
		problems = append(problems, "LOGIN_ATTEMPT_WINDOW must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}
