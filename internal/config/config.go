package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env            string
	APIBaseURL     string
	HTTPTimeout    time.Duration
	MetricsAddr    string
	LogLevel       string
	OpenBrowser    bool
	InputQueueSize int
}

// Load reads an optional .env file and returns config populated from
// environment variables with sensible defaults.
func Load() App {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("ignoring .env: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the current environment only.
func FromEnv() App {
	return App{
		Env:            getEnv("APP_ENV", "dev"),
		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000"), "/"),
		HTTPTimeout:    durationEnv("HTTP_TIMEOUT", 0),
		MetricsAddr:    getEnv("METRICS_ADDR", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		OpenBrowser:    boolEnv("OPEN_BROWSER", true),
		InputQueueSize: intEnv("INPUT_QUEUE_SIZE", 16),
	}
}

// Production reports whether the console runs with production defaults.
func (a App) Production() bool {
	return a.Env == "production" || a.Env == "prod"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if val == "1" || val == "true" || val == "TRUE" {
			return true
		}
		if val == "0" || val == "false" || val == "FALSE" {
			return false
		}
		log.Printf("invalid bool for %s, using fallback %v", key, fallback)
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
