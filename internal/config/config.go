package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	LedgerFile     = "file"
	LedgerPostgres = "postgres"

	LockProcess = "process"
	LockRedis   = "redis"
)

type Config struct {
	// Storage
	DataDir      string
	LedgerDriver string
	LockDriver   string

	// Database (LEDGER_DRIVER=postgres)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	LogRetentionDays int

	// Redis (LOCK_DRIVER=redis)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockTTL       time.Duration

	// JWT
	JWTSecret       string
	JWTAccessExpiry time.Duration

	// Admin
	AdminCode   string
	AdminEmails string

	// Booking
	Timezone           string
	BookingWindowDays  int
	PaymentSuccessRate float64

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// Server
	Port        string
	CORSOrigins string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	return &Config{
		DataDir:      getEnv("DATA_DIR", "data"),
		LedgerDriver: getEnv("LEDGER_DRIVER", LedgerFile),
		LockDriver:   getEnv("LOCK_DRIVER", LockProcess),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "doctor_booking"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		LockTTL:       parseDuration(getEnv("LOCK_TTL", "10s")),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: parseDuration(getEnv("JWT_ACCESS_EXPIRY", "24h")),

		AdminCode:   getEnv("ADMIN_CODE", ""),
		AdminEmails: getEnv("ADMIN_EMAILS", ""),

		Timezone:           getEnv("TIMEZONE", "Local"),
		BookingWindowDays:  parseInt(getEnv("BOOKING_WINDOW_DAYS", "30"), 30),
		PaymentSuccessRate: parseFloat(getEnv("PAYMENT_SUCCESS_RATE", "0.9"), 0.9),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     parseInt(getEnv("SMTP_PORT", "587"), 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@healthcare.local"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// AdminEmailList splits ADMIN_EMAILS. Emails listed there are admins
// whatever role their user record carries.
func (c *Config) AdminEmailList() []string {
	if c.AdminEmails == "" {
		return nil
	}
	parts := strings.Split(c.AdminEmails, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Location resolves Timezone, falling back to the host's local zone.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("unknown TIMEZONE, using local time", "timezone", c.Timezone, "error", err)
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}
