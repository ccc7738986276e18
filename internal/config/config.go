package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const DefaultCORSOrigin = "http://localhost:3000"

type Config struct {
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	AppPort         string
	AppEnv          string
	JWTSecret       string
	RedisURL        string
	ResendAPIKey    string
	ResendFromEmail string
	CORSOrigins     []string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:          os.Getenv("DB_HOST"),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          os.Getenv("DB_NAME"),
		DBPort:          os.Getenv("DB_PORT"),
		AppPort:         getEnv("APP_PORT", "8080"),
		AppEnv:          os.Getenv("APP_ENV"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		RedisURL:        os.Getenv("REDIS_URL"),
		ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
		ResendFromEmail: getEnv("RESEND_FROM_EMAIL", "noreply@arkom.app"),
		CORSOrigins:     splitList(os.Getenv("CORS_ORIGINS")),
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{DefaultCORSOrigin}
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
