package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitSwitchesExistingLoggers(t *testing.T) {
	log := L("testcomp")

	var buf bytes.Buffer
	Init("json", "info", &buf)
	defer Init("text", "info", nil)

	log.Info("hello", "k", "v")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if record["component"] != "testcomp" {
		t.Errorf("component attr missing: %v", record)
	}
	if record["msg"] != "hello" {
		t.Errorf("msg = %v", record["msg"])
	}
}

func TestInitLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	Init("text", "error", &buf)
	defer Init("text", "info", nil)

	L("x").Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("info record leaked through error level: %s", buf.String())
	}
	L("x").Error("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("error record missing: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDailyWriterWritesDatedFile(t *testing.T) {
	dir := t.TempDir()
	w, err := NewDailyWriter(dir, 7)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if _, err := w.Write([]byte("line\n")); err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(dir, "diagnostics-"+time.Now().Local().Format("2006-01-02")+".log")
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("dated file missing: %v", err)
	}
	if string(data) != "line\n" {
		t.Errorf("content = %q", data)
	}
}

func TestDailyWriterPrunesOldFiles(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "diagnostics-2020-01-01.log")
	if err := os.WriteFile(stale, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-30 * 24 * time.Hour)
	os.Chtimes(stale, old, old)

	fresh := filepath.Join(dir, "notes.txt")
	os.WriteFile(fresh, []byte("keep"), 0o600)
	os.Chtimes(fresh, old, old)

	w, err := NewDailyWriter(dir, 7)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale diagnostics file survived pruning")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("non-log file should never be pruned")
	}
}
