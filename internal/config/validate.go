package config

import (
	"fmt"
	"log/slog"
	"strings"
)

var knownChannels = map[string]bool{
	"application": true,
	"system":      true,
	"security":    true,
	"setup":       true,
}

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Validate checks the config for invalid values and returns all errors found.
// Dangerous zero-values are clamped to safe defaults. Other validation errors
// are logged as warnings but do not prevent startup.
func (c *Config) Validate() []error {
	var errs []error

	if c.RetentionDays < 1 {
		errs = append(errs, fmt.Errorf("retention_days %d is below minimum 1, clamping", c.RetentionDays))
		c.RetentionDays = 1
	} else if c.RetentionDays > 365 {
		errs = append(errs, fmt.Errorf("retention_days %d exceeds maximum 365, clamping", c.RetentionDays))
		c.RetentionDays = 365
	}

	if c.MaxEventsPerSync < 100 {
		errs = append(errs, fmt.Errorf("max_events_per_sync %d is below minimum 100, clamping", c.MaxEventsPerSync))
		c.MaxEventsPerSync = 100
	} else if c.MaxEventsPerSync > 20000 {
		errs = append(errs, fmt.Errorf("max_events_per_sync %d exceeds maximum 20000, clamping", c.MaxEventsPerSync))
		c.MaxEventsPerSync = 20000
	}

	for _, name := range c.WindowsChannels {
		if !knownChannels[strings.ToLower(name)] {
			errs = append(errs, fmt.Errorf("unknown event log channel %q", name))
		}
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	// Log validation errors as warnings
	for _, err := range errs {
		slog.Warn("config validation", "error", err)
	}

	return errs
}
