package worker

import (
	"fmt"
	"log/slog"
	"time"

	"clankervids/internal/pkg/config"
)

// WorkerConfig holds the operational settings for the scan worker: when scans
// run, how long a run may take, and where the health server listens.
//
// All fields are loaded fail-open from the environment. An invalid value
// never aborts startup; the default is used instead and a warning is logged.
type WorkerConfig struct {
	// CronSchedule is the cron expression for scheduling scan runs.
	// Format: "minute hour day month weekday"
	// Default: "0 */6 * * *" (every six hours)
	CronSchedule string

	// Timezone is the IANA timezone name used for cron scheduling.
	// Default: "UTC"
	Timezone string

	// ScanTimeout bounds a single scan run. The run context is cancelled
	// once it elapses and the partial results are kept.
	// Range: 1m-4h. Default: 30 minutes.
	ScanTimeout time.Duration

	// HealthPort is the port for the health check HTTP server.
	// Range: 1024-65535. Default: 9091.
	HealthPort int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule: "0 */6 * * *",
		Timezone:     "UTC",
		ScanTimeout:  30 * time.Minute,
		HealthPort:   9091,
	}
}

// Validate checks every field and returns the collected errors, if any.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.ScanTimeout, 1*time.Minute, 4*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("scan timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables
// with fallback to defaults on invalid values (fail-open).
//
// Environment variables:
//   - CRON_SCHEDULE: cron expression (default: "0 */6 * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - SCAN_TIMEOUT: duration string, e.g. "30m", range 1m-4h
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default: 9091)
//
// Each applied fallback logs a warning and increments the worker config
// metrics. The returned error is always nil; the signature keeps the call
// site uniform with other loaders.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	recordFallback := func(field, envField string, warnings []string) {
		fallbackApplied = true
		metrics.RecordValidationError(envField)
		metrics.RecordFallback(envField, "default")
		for _, warning := range warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	result := config.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	if result.FallbackApplied {
		recordFallback("CronSchedule", "cron_schedule", result.Warnings)
	}

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	if result.FallbackApplied {
		recordFallback("Timezone", "timezone", result.Warnings)
	}

	result = config.LoadEnvDuration("SCAN_TIMEOUT", cfg.ScanTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 4*time.Hour)
	})
	cfg.ScanTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		recordFallback("ScanTimeout", "scan_timeout", result.Warnings)
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		recordFallback("HealthPort", "health_port", result.Warnings)
	}

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
