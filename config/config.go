package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-this-in-production"

type Config struct {
	Port          string
	GinMode       string
	JWTSecret     []byte
	ReconcileCron string

	// FoldSlugDiacritics turns "Café" into "cafe" instead of "caf".
	FoldSlugDiacritics bool
	Database           DatabaseConfig
}

type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	SSLMode       string
	MaxOpenConns  int
	SlowThreshold time.Duration
}

// Load reads .env when present, then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	secret := GetEnv("JWT_SECRET", defaultJWTSecret)
	if secret == defaultJWTSecret {
		log.Println("JWT_SECRET is not set, using the development default")
	}

	return &Config{
		Port:               GetEnv("PORT", "8080"),
		GinMode:            GetEnv("GIN_MODE", "debug"),
		JWTSecret:          []byte(secret),
		ReconcileCron:      GetEnv("RECONCILE_CRON", "@every 1h"),
		FoldSlugDiacritics: getEnvBool("SLUG_FOLD_DIACRITICS", false),
		Database: DatabaseConfig{
			Host:          GetEnv("DB_HOST", "localhost"),
			Port:          GetEnv("DB_PORT", "5432"),
			User:          GetEnv("DB_USER", "postgres"),
			Password:      GetEnv("DB_PASSWORD", "postgres"),
			Name:          GetEnv("DB_NAME", "blogfeed"),
			SSLMode:       GetEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:  getEnvInt("DB_MAX_OPEN_CONNS", 20),
			SlowThreshold: time.Duration(getEnvInt("SLOW_QUERY_MS", 200)) * time.Millisecond,
		},
	}
}

// GetEnv returns the variable, or defaultValue when it is unset.
func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %t", key, raw, defaultValue)
		return defaultValue
	}
	return b
}
