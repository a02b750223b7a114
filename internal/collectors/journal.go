package collectors

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/hermes-log/collector/internal/taxonomy"
	"github.com/hermes-log/collector/pkg/types"
)

// parseJournalLine parses one journalctl -o json record. Journald field
// values are usually strings but may be numbers or arrays, so everything is
// resolved through the raw map with ordered fallback keys.
func parseJournalLine(line string) (types.NormalizedEvent, bool) {
	var record map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return types.NormalizedEvent{}, false
	}

	identifier := jsonString(record, "SYSLOG_IDENTIFIER")
	comm := jsonString(record, "_COMM")
	unit := jsonString(record, "_SYSTEMD_UNIT")
	transport := jsonString(record, "_TRANSPORT")

	logName := pickFirst(identifier, comm, unit, transport)
	if logName == "" {
		logName = "journal"
	}
	provider := pickFirst(comm, identifier, jsonString(record, "_EXE"))
	if provider == "" {
		provider = "unknown"
	}

	severity := taxonomy.SeverityFromJournalPriority(
		pickFirst(jsonString(record, "PRIORITY"), jsonString(record, "SYSLOG_PRIORITY")))
	category := taxonomy.Category(identifier, comm, unit, transport, provider)

	event := types.NewEvent(types.OSLinux, logName, category, provider, nil,
		severity, sanitizeMessage(jsonString(record, "MESSAGE")))

	if ts, ok := journalTimestamp(record); ok {
		event.Timestamp = ts
	}
	return event, true
}

// journalTimestamp converts the microsecond realtime timestamp, which
// journald emits as either a decimal string or a bare number.
func journalTimestamp(record map[string]json.RawMessage) (string, bool) {
	for _, key := range []string{"__REALTIME_TIMESTAMP", "_SOURCE_REALTIME_TIMESTAMP"} {
		raw, ok := record[key]
		if !ok {
			continue
		}
		micros, ok := microseconds(raw)
		if !ok {
			continue
		}
		t := time.Unix(micros/1_000_000, (micros%1_000_000)*1000)
		return t.UTC().Format(time.RFC3339), true
	}
	return "", false
}

func microseconds(raw json.RawMessage) (int64, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err == nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	return 0, false
}

// jsonString resolves a field as a string, tolerating absent keys and
// non-string values.
func jsonString(record map[string]json.RawMessage, key string) string {
	raw, ok := record[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
