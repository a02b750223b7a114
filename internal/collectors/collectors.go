// Package collectors implements the live event adapters and crash report
// importers for the three supported platforms behind one contract. Each
// call performs a single bounded pull; there is no background collection
// and no streaming.
package collectors

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/hermes-log/collector/pkg/types"
)

// Event collection bounds. A zero max yields an immediate empty result;
// anything above the hard cap is clamped down to it.
const (
	DefaultMaxEvents = 2000
	HardMaxEvents    = 10000
)

// Crash import bounds.
const (
	MinCrashLimit = 1
	MaxCrashLimit = 2000
	// Importers scan more candidates than the caller asked for so id
	// deduplication cannot starve the recency ranking.
	crashOverScan = 4
)

const noMessagePlaceholder = "No log message."

// Options bounds a single live collection call. Start and End are optional
// UTC instants. MaxEvents of exactly 0 yields an immediate empty result;
// use DefaultOptions for the documented default bound. Channels narrows the
// Windows channel set and is ignored by the other adapters.
type Options struct {
	Start     *time.Time
	End       *time.Time
	MaxEvents int
	Channels  []string
}

// DefaultOptions returns an unbounded-window collection with the default
// event cap.
func DefaultOptions() Options {
	return Options{MaxEvents: DefaultMaxEvents}
}

// Result is the outcome of one collection call. Errors means the call
// produced no usable events at all; Warnings reports partial degradation
// and never accompanies the discarding of already-collected events.
type Result struct {
	Events   []types.NormalizedEvent
	Warnings []string
	Errors   []string
}

// Collector is the per-platform capability set. One implementation is
// selected at startup by host OS detection; no adapter depends on another.
type Collector interface {
	Collect(opts Options) Result
	ImportCrashes(limit int) []types.CrashRecord
}

// New returns the collector for the running host.
func New() Collector {
	return newPlatformCollector()
}

// maxEventsFor applies the hard clamp. Zero and negative values stay zero,
// which every adapter turns into an immediate empty result.
func maxEventsFor(requested int) int {
	if requested <= 0 {
		return 0
	}
	if requested > HardMaxEvents {
		return HardMaxEvents
	}
	return requested
}

func clampCrashLimit(limit int) int {
	if limit < MinCrashLimit {
		return MinCrashLimit
	}
	if limit > MaxCrashLimit {
		return MaxCrashLimit
	}
	return limit
}

// sanitizeMessage substitutes the placeholder for empty or blank text so a
// normalized message is never empty.
func sanitizeMessage(message string) string {
	if strings.TrimSpace(message) == "" {
		return noMessagePlaceholder
	}
	return message
}

// pickFirst returns the first candidate with non-blank content.
func pickFirst(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}

// componentFromPath reduces an extracted path or executable string to its
// file-name portion, falling back to the raw string.
func componentFromPath(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	base := trimmed
	// Crash artifacts from foreign hosts carry foreign separators, so
	// split on both instead of trusting filepath.Base alone.
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	base = filepath.Base(base)
	if base == "" || base == "." {
		return trimmed
	}
	return base
}

// formatLocalTime renders an instant the way journalctl --since/--until and
// log show --start/--end expect it: local time, second precision.
func formatLocalTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
