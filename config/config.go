package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	ServerPort int
	LogLevel   string

	ModelPath        string
	ModelColumnsPath string

	RawCSVPath      string
	InsertBatchSize int

	ComparableCacheTTL time.Duration
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "propiedades"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "propiedades123"),
		PostgresDB:       getEnv("POSTGRES_DB", "inmobiliaria_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		ServerPort: getEnvInt("SERVER_PORT", 8080),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		ModelPath:        getEnv("MODEL_PATH", "./data/model.json"),
		ModelColumnsPath: getEnv("MODEL_COLUMNS_PATH", "./data/model_columns.json"),

		RawCSVPath:      getEnv("RAW_CSV_PATH", "./data/ventas_deptos.csv"),
		InsertBatchSize: getEnvInt("INSERT_BATCH_SIZE", 1000),

		ComparableCacheTTL: time.Duration(getEnvInt("COMPARABLE_CACHE_TTL_SEC", 300)) * time.Second,
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
