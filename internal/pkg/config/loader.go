// Package config provides environment variable loading with validation and
// fail-open fallback. Invalid values never abort startup; they fall back to
// defaults and surface as warnings so operators can fix them without an
// outage.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult represents the result of loading a configuration value.
//
// Fields:
//   - Value: The loaded configuration value (may be fallback if validation failed)
//   - Warnings: List of warning messages (one per fallback applied)
//   - FallbackApplied: True if the default value was used due to validation failure
//
// Example:
//
//	result := LoadEnvDuration("SCAN_TIMEOUT", 30*time.Minute, ValidatePositiveDuration)
//	if result.FallbackApplied {
//	    for _, warning := range result.Warnings {
//	        slog.Warn(warning)
//	    }
//	}
//	timeout := result.Value.(time.Duration)
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvString loads a string value from an environment variable.
// If the environment variable is not set, the default value is returned.
// No validation is performed; use LoadEnvWithFallback when validation is
// needed.
func LoadEnvString(envKey, defaultValue string) string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvWithFallback loads a string value from an environment variable
// with validation and automatic fallback to the default on validation
// failure.
//
// Loading behavior:
//  1. Read environment variable
//  2. If not set or empty: use default value (no warning)
//  3. If set: validate using the provided validator
//  4. If validation fails: use default value and generate a warning
//
// This function never returns an error. Validation failures result in
// warnings, not errors.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)

	if value == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return ConfigLoadResult{
				Value: defaultValue,
				Warnings: []string{fmt.Sprintf(
					"Invalid %s='%s': %v, falling back to default '%s'",
					envKey, value, err, defaultValue)},
				FallbackApplied: true,
			}
		}
	}

	return ConfigLoadResult{Value: value}
}

// LoadEnvDuration loads a duration value from an environment variable.
// The value must parse with time.ParseDuration (e.g. "30m", "1h30m").
// Parse or validation failures fall back to the default with a warning.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	raw := os.Getenv(envKey)

	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		return ConfigLoadResult{
			Value: defaultValue,
			Warnings: []string{fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%v'",
				envKey, raw, err, defaultValue)},
			FallbackApplied: true,
		}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return ConfigLoadResult{
				Value: defaultValue,
				Warnings: []string{fmt.Sprintf(
					"Invalid %s='%s': %v, falling back to default '%v'",
					envKey, raw, err, defaultValue)},
				FallbackApplied: true,
			}
		}
	}

	return ConfigLoadResult{Value: value}
}

// LoadEnvInt loads an integer value from an environment variable.
// Parse or validation failures fall back to the default with a warning.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	raw := os.Getenv(envKey)

	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return ConfigLoadResult{
			Value: defaultValue,
			Warnings: []string{fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%d'",
				envKey, raw, err, defaultValue)},
			FallbackApplied: true,
		}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return ConfigLoadResult{
				Value: defaultValue,
				Warnings: []string{fmt.Sprintf(
					"Invalid %s='%s': %v, falling back to default '%d'",
					envKey, raw, err, defaultValue)},
				FallbackApplied: true,
			}
		}
	}

	return ConfigLoadResult{Value: value}
}

// LoadEnvBool loads a boolean value from an environment variable.
// Accepted values are those of strconv.ParseBool ("true", "1", "false", "0", ...).
// Parse failures fall back to the default with a warning.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	raw := os.Getenv(envKey)

	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return ConfigLoadResult{
			Value: defaultValue,
			Warnings: []string{fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%t'",
				envKey, raw, err, defaultValue)},
			FallbackApplied: true,
		}
	}

	return ConfigLoadResult{Value: value}
}
