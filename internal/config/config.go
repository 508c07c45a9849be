package config

import (
	"log/slog"
	"os"
	"time"
)

// GetStringFromEnv returns the value of key, or defaultValue when unset.
// Used for process knobs that live outside the config file.
func GetStringFromEnv(key string, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// GetDurationFromEnv parses key with time.ParseDuration. An unparsable
// value is logged and replaced by defaultValue.
func GetDurationFromEnv(key string, defaultValue time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Ignoring invalid duration", "key", key, "value", value, "error", err)
		return defaultValue
	}
	return d
}
