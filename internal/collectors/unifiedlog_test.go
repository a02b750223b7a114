package collectors

import (
	"testing"

	"github.com/hermes-log/collector/internal/taxonomy"
	"github.com/hermes-log/collector/pkg/types"
)

func TestParseUnifiedLogLine(t *testing.T) {
	line := `{"timestamp":"2026-02-10 08:15:00.123456-0800","subsystem":"com.apple.securityd","category":"xpc","process":"securityd","sender":"libsystem_secinit.dylib","eventMessage":"connection invalidated","messageType":"Error"}`

	event, ok := parseUnifiedLogLine(line)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if event.OS != types.OSMacOS {
		t.Errorf("os = %s", event.OS)
	}
	if event.LogName != "com.apple.securityd" {
		t.Errorf("logName = %s", event.LogName)
	}
	if event.Provider != "securityd" {
		t.Errorf("provider = %s", event.Provider)
	}
	if event.Severity != taxonomy.SeverityError {
		t.Errorf("severity = %s", event.Severity)
	}
	if event.Category != taxonomy.CategorySecurity {
		t.Errorf("category = %s, want security", event.Category)
	}
	if event.Timestamp != "2026-02-10 08:15:00.123456-0800" {
		t.Errorf("native timestamp not preserved: %s", event.Timestamp)
	}
}

func TestParseUnifiedLogLineMessageFallbackChain(t *testing.T) {
	event, ok := parseUnifiedLogLine(`{"message":"from message key","process":"kernel"}`)
	if !ok {
		t.Fatal("parse failed")
	}
	if event.Message != "from message key" {
		t.Errorf("message = %q", event.Message)
	}
	if event.Category != taxonomy.CategorySystem {
		t.Errorf("kernel process should classify as system, got %s", event.Category)
	}

	event, _ = parseUnifiedLogLine(`{"formattedMessage":"formatted only"}`)
	if event.Message != "formatted only" {
		t.Errorf("formattedMessage fallback broken: %q", event.Message)
	}

	event, _ = parseUnifiedLogLine(`{}`)
	if event.Message != "No log message." {
		t.Errorf("placeholder missing: %q", event.Message)
	}
	if event.LogName != "system" {
		t.Errorf("logName default = %s, want system", event.LogName)
	}
	if event.Provider != "unknown" {
		t.Errorf("provider default = %s, want unknown", event.Provider)
	}
}

func TestParseUnifiedLogLineFaultSeverity(t *testing.T) {
	event, ok := parseUnifiedLogLine(`{"eventMessage":"boom","messageType":"Fault","process":"WindowServer"}`)
	if !ok {
		t.Fatal("parse failed")
	}
	if event.Severity != taxonomy.SeverityCritical {
		t.Errorf("fault should map to critical, got %s", event.Severity)
	}
}

func TestParseUnifiedLogLineMalformed(t *testing.T) {
	if _, ok := parseUnifiedLogLine("Timestamp  Thread  Type  Activity  PID"); ok {
		t.Error("header line should not parse")
	}
}
