package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	HTTPPort   int
	DebugMode  bool

	// Soft-deleted bulletins and rows stay restorable for this long.
	TrashRetention time.Duration
	PurgeInterval  time.Duration
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnvAsInt("DB_PORT", 3306),
		DBUser:         getEnv("DB_USER", "rundown_user"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "rundown"),
		HTTPPort:       getEnvAsInt("HTTP_PORT", 8080),
		DebugMode:      getEnvAsBool("DEBUG_MODE", false),
		TrashRetention: time.Duration(getEnvAsInt("TRASH_RETENTION_HOURS", 72)) * time.Hour,
		PurgeInterval:  time.Duration(getEnvAsInt("PURGE_INTERVAL_MINUTES", 60)) * time.Minute,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return defaultValue
}
