// Package taxonomy maps the severity and category vocabularies of the
// native diagnostic sources onto the one shared taxonomy, and derives the
// deterministic identity of imported crash artifacts.
package taxonomy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Severity values. Every native level/priority field collapses to one of
// these four; information is the default for anything unknown or absent.
const (
	SeverityCritical    = "critical"
	SeverityError       = "error"
	SeverityWarning     = "warning"
	SeverityInformation = "information"
)

// Category values.
const (
	CategorySystem      = "system"
	CategorySecurity    = "security"
	CategoryApplication = "application"
	CategoryAudit       = "audit"
)

const crashIDPrefix = "imported-"

// CrashID derives the stable identity of a scanner-discovered crash.
// The same (os, source, crashType, seed) quadruple hashes to the same id on
// any host and any run, which is what makes re-imports upsert-safe. seed is
// the artifact path when one exists, else the summary.
func CrashID(os, source, crashType, seed string) string {
	h := xxhash.Sum64String(os + "|" + source + "|" + crashType + "|" + seed)
	return fmt.Sprintf("%s%016x", crashIDPrefix, h)
}

// SeverityFromWindowsLevel maps the numeric Windows event level.
// 1=Critical, 2=Error, 3=Warning, 4=Information, 5=Verbose.
func SeverityFromWindowsLevel(level int) string {
	switch level {
	case 1:
		return SeverityCritical
	case 2:
		return SeverityError
	case 3:
		return SeverityWarning
	default:
		return SeverityInformation
	}
}

// SeverityFromLevelName maps a free-text Windows LevelDisplayName-style
// value by keyword. "Audit Failure" counts as an error.
func SeverityFromLevelName(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "critical"):
		return SeverityCritical
	case strings.Contains(lower, "error"), strings.Contains(lower, "audit failure"):
		return SeverityError
	case strings.Contains(lower, "warning"):
		return SeverityWarning
	default:
		return SeverityInformation
	}
}

// SeverityFromJournalPriority maps a syslog priority string (0-7).
// Non-numeric or absent input defaults to information.
func SeverityFromJournalPriority(priority string) string {
	n, err := strconv.Atoi(strings.TrimSpace(priority))
	if err != nil {
		return SeverityInformation
	}
	switch {
	case n <= 2:
		return SeverityCritical
	case n == 3:
		return SeverityError
	case n == 4:
		return SeverityWarning
	default:
		return SeverityInformation
	}
}

// SeverityFromUnifiedType maps a macOS unified-log messageType/level string.
func SeverityFromUnifiedType(messageType string) string {
	lower := strings.ToLower(messageType)
	switch {
	case strings.Contains(lower, "fault"), strings.Contains(lower, "critical"):
		return SeverityCritical
	case strings.Contains(lower, "error"):
		return SeverityError
	case strings.Contains(lower, "warn"):
		return SeverityWarning
	default:
		return SeverityInformation
	}
}

// Category classifies a record from whatever channel/subsystem/provider
// strings the adapter could resolve. Checks run in order; the first keyword
// hit wins and application is the default bucket.
func Category(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p)
		b.WriteByte(' ')
	}
	lower := strings.ToLower(b.String())

	switch {
	case strings.Contains(lower, "audit"):
		return CategoryAudit
	case containsAny(lower, "auth", "ssh", "sudo", "security"):
		return CategorySecurity
	case containsAny(lower, "kernel", "systemd", "dbus", "udev", "system"):
		return CategorySystem
	default:
		return CategoryApplication
	}
}

// CategoryFromChannel classifies a Windows channel name. Channel names are
// a closed vocabulary, so the match order differs from Category: "Security
// Audit Log" is a security channel, not an audit one.
func CategoryFromChannel(channel string) string {
	lower := strings.ToLower(channel)
	switch {
	case strings.Contains(lower, "security"):
		return CategorySecurity
	case strings.Contains(lower, "system"):
		return CategorySystem
	default:
		return CategoryApplication
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
