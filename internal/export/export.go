// Package export writes collected events to JSON or CSV files under a
// caller-chosen directory, with filename sanitization.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hermes-log/collector/pkg/types"
)

const fallbackStem = "hermes-events"

var csvHeader = []string{
	"timestamp", "os", "logName", "category", "provider",
	"eventId", "severity", "message", "source",
}

// Events writes events to dir as the given format ("json" or "csv") and
// returns the full path of the written file. The filename is sanitized to
// a safe basename and given the format's extension if it lacks one.
func Events(dir, format, filename string, events []types.NormalizedEvent) (string, error) {
	ext := strings.ToLower(format)
	if ext != "json" && ext != "csv" {
		return "", fmt.Errorf("unsupported export format %q", format)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("export directory %q is invalid: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("export directory %q is not a directory", dir)
	}

	path := filepath.Join(dir, SanitizeFilename(filename, ext))

	var payload []byte
	if ext == "json" {
		payload, err = json.MarshalIndent(events, "", "  ")
		if err != nil {
			return "", fmt.Errorf("serialize events: %w", err)
		}
	} else {
		payload, err = buildCSV(events)
		if err != nil {
			return "", fmt.Errorf("serialize events: %w", err)
		}
	}

	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

// SanitizeFilename reduces filename to a safe basename: path components
// are stripped, anything outside [A-Za-z0-9._-] becomes an underscore,
// an empty result falls back to a default stem, and the extension is
// appended when missing.
func SanitizeFilename(filename, extension string) string {
	raw := filepath.Base(filename)
	if raw == "." || raw == string(filepath.Separator) {
		raw = fallbackStem
	}

	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	clean := b.String()
	if clean == "" {
		clean = fallbackStem
	}
	if !strings.HasSuffix(strings.ToLower(clean), "."+extension) {
		clean += "." + extension
	}
	return clean
}

func buildCSV(events []types.NormalizedEvent) ([]byte, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, ev := range events {
		eventID := ""
		if ev.EventID != nil {
			eventID = strconv.FormatUint(uint64(*ev.EventID), 10)
		}
		source := "Live/Local"
		if ev.Imported {
			source = "Imported"
		}
		row := []string{
			ev.Timestamp, string(ev.OS), ev.LogName, ev.Category,
			ev.Provider, eventID, ev.Severity, ev.Message, source,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}
