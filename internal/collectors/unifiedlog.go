package collectors

import (
	"encoding/json"

	"github.com/hermes-log/collector/internal/taxonomy"
	"github.com/hermes-log/collector/pkg/types"
)

// unifiedRecord matches the fields of interest in `log show --style json`
// line output. The full payload carries dozens more keys that are never
// needed.
type unifiedRecord struct {
	Timestamp        string  `json:"timestamp"`
	Subsystem        string  `json:"subsystem"`
	Category         string  `json:"category"`
	Process          string  `json:"process"`
	Sender           string  `json:"sender"`
	EventMessage     string  `json:"eventMessage"`
	Message          string  `json:"message"`
	FormattedMessage string  `json:"formattedMessage"`
	MessageType      string  `json:"messageType"`
	Level            string  `json:"level"`
	EventID          *uint32 `json:"eventID"`
}

// parseUnifiedLogLine parses one unified-log JSON record.
func parseUnifiedLogLine(line string) (types.NormalizedEvent, bool) {
	var record unifiedRecord
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return types.NormalizedEvent{}, false
	}

	logName := pickFirst(record.Subsystem, record.Category, record.Process, record.Sender)
	if logName == "" {
		logName = "system"
	}
	provider := pickFirst(record.Process, record.Sender, record.Subsystem)
	if provider == "" {
		provider = "unknown"
	}

	message := sanitizeMessage(pickFirst(record.EventMessage, record.Message, record.FormattedMessage))
	severity := taxonomy.SeverityFromUnifiedType(pickFirst(record.MessageType, record.Level))
	category := taxonomy.Category(record.Category, record.Subsystem, provider)

	event := types.NewEvent(types.OSMacOS, logName, category, provider, record.EventID, severity, message)
	if record.Timestamp != "" {
		event.Timestamp = record.Timestamp
	}
	return event, true
}
