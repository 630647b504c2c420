package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	DBPath             string // path to the sqlite library database
	FFmpegPath         string // ffmpeg binary; ffprobe is derived from it
	ExportDir          string // default directory for exported mixes
	DefaultCrossfadeMs int64  // auto-mix crossfade duration
	LogPath            string
	LogLevel           string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt64 gets an environment variable as int64 or returns a default value.
func getEnvInt64(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		DBPath:             getEnv("DB_PATH", "library.db"),
		FFmpegPath:         getEnv("FFMPEG_PATH", "ffmpeg"),
		ExportDir:          getEnv("EXPORT_DIR", "exports"),
		DefaultCrossfadeMs: getEnvInt64("DEFAULT_CROSSFADE_MS", 5000),
		LogPath:            getEnv("LOG_PATH", filepath.Join("logs", "jucyaudio.log")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}
