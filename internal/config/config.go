package config

import (
	"fmt"
	"log/slog"
	"os"
)

type Config struct {
	ServerPort      string
	WebRiskAPIKey   string
	ProjectNumber   string
	WebRiskEndpoint string
	CORSAllowOrigin string
	LogLevel        slog.Level
}

func Load() *Config {
	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		WebRiskAPIKey:   requireEnv("WEBRISK_API_KEY"),
		ProjectNumber:   requireEnv("GOOGLE_CLOUD_PROJECT_NUMBER"),
		WebRiskEndpoint: getEnv("WEBRISK_ENDPOINT", "https://webrisk.googleapis.com"),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "https://tamw-webrisk-demo.uc.r.appspot.com"),
		LogLevel:        getLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return v
}

func getLevel(key string, fallback slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		slog.Warn("invalid log level for env var, using default",
			"key", key, "value", v, "default", fallback)
		return fallback
	}
	return level
}
