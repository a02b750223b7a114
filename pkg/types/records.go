// Package types holds the two normalized record schemas every platform
// adapter produces and the storage layer persists.
package types

import (
	"runtime"
	"time"

	"github.com/google/uuid"
)

// SupportedOS identifies the host platform vocabulary shared by events and
// crash records. Anything that is not Windows or macOS is reported as linux.
type SupportedOS string

const (
	OSWindows SupportedOS = "windows"
	OSLinux   SupportedOS = "linux"
	OSMacOS   SupportedOS = "macos"
)

func (o SupportedOS) String() string { return string(o) }

// DetectOS returns the SupportedOS value for the running host.
func DetectOS() SupportedOS {
	switch runtime.GOOS {
	case "windows":
		return OSWindows
	case "darwin":
		return OSMacOS
	default:
		return OSLinux
	}
}

// NormalizedEvent is a single diagnostic log entry reduced to the
// platform-independent shape.
type NormalizedEvent struct {
	ID        string      `json:"id"`
	Timestamp string      `json:"timestamp"` // RFC 3339 with offset
	OS        SupportedOS `json:"os"`
	LogName   string      `json:"logName"`
	Category  string      `json:"category"`
	Provider  string      `json:"provider"`
	EventID   *uint32     `json:"eventId,omitempty"`
	Severity  string      `json:"severity"`
	Message   string      `json:"message"`
	Imported  bool        `json:"imported"`
}

// NewEvent builds a live event with a fresh opaque id and the collection
// time as timestamp. Adapters overwrite Timestamp when the native record
// carries its own.
func NewEvent(os SupportedOS, logName, category, provider string, eventID *uint32, severity, message string) NormalizedEvent {
	return NormalizedEvent{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		OS:        os,
		LogName:   logName,
		Category:  category,
		Provider:  provider,
		EventID:   eventID,
		Severity:  severity,
		Message:   message,
		Imported:  false,
	}
}

// CrashRecord is a single crash/panic/dump artifact. Scanner-discovered
// records carry a deterministic id so re-imports upsert instead of
// duplicating; synthetic samples carry a random one.
type CrashRecord struct {
	ID                 string      `json:"id"`
	Timestamp          string      `json:"timestamp"`
	OS                 SupportedOS `json:"os"`
	Source             string      `json:"source"`
	CrashType          string      `json:"crashType"`
	Code               string      `json:"code,omitempty"`
	Summary            string      `json:"summary"`
	SuspectedComponent string      `json:"suspectedComponent,omitempty"`
	RawPath            string      `json:"rawPath,omitempty"`
	Imported           bool        `json:"imported"`
}

// Uint32 returns a pointer to v, for optional event id fields.
func Uint32(v uint32) *uint32 { return &v }
