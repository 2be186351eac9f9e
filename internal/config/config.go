package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port int

	// DatabaseURL is the single required setting; main refuses to start
	// without it.
	DatabaseURL string

	SessionSecret   string
	SessionTTLHours int

	AdminUsername string
	AdminPassword string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTelEndpoint string
	CORSOrigins  []string
}

func Load() Config {
	return Config{
		Env:             getEnv("APP_ENV", "dev"),
		Port:            getEnvInt("PORT", 8080),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SessionSecret:   getEnv("SESSION_SECRET", "casemanage-dev-secret"),
		SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 24),
		AdminUsername:   os.Getenv("ADMIN_USERNAME"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		OTelEndpoint:    os.Getenv("OTEL_ENDPOINT"),
		CORSOrigins:     getEnvList("CORS_ORIGINS"),
	}
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvList(key string) []string {
	v := os.Getenv(key)

	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)

		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
