package config

import (
	"fmt"
	"os"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

func durationFromEnv(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// CheckoutHoldTTL is how long a hold created through the booking flow
// reserves stock before payment must complete.
func CheckoutHoldTTL() time.Duration {
	return durationFromEnv("CHECKOUT_HOLD_TTL", 15*time.Minute)
}

// DirectHoldTTL is the shorter window for holds created through the
// standalone hold API.
func DirectHoldTTL() time.Duration {
	return durationFromEnv("DIRECT_HOLD_TTL", 10*time.Minute)
}

func ReclaimerInterval() time.Duration {
	return durationFromEnv("RECLAIMER_INTERVAL", 30*time.Second)
}

// LockWaitTimeout bounds how long a reservation attempt waits for a
// contended inventory key before failing with a retryable error.
func LockWaitTimeout() time.Duration {
	return durationFromEnv("LOCK_WAIT_TIMEOUT", 3*time.Second)
}

func AvailabilityCacheTTL() time.Duration {
	return durationFromEnv("AVAILABILITY_CACHE_TTL", 30*time.Second)
}

func APIEnv() string {
	return os.Getenv("API_ENV")
}
