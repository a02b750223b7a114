package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestSaveToLoadRoundTrip(t *testing.T) {
	// Save and Load share viper's package-global state.
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "nested", "collector.yaml")

	cfg := Default()
	cfg.DataDir = "/tmp/hermes-data"
	cfg.RetentionDays = 21
	cfg.MaxEventsPerSync = 5000
	cfg.WindowsChannels = []string{"Application", "System"}
	cfg.LogFormat = "json"
	cfg.LogLevel = "debug"

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("save config: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file missing: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if got.DataDir != cfg.DataDir {
		t.Errorf("data_dir = %q, want %q", got.DataDir, cfg.DataDir)
	}
	if got.RetentionDays != 21 || got.MaxEventsPerSync != 5000 {
		t.Errorf("ingest profile not round-tripped: %+v", got)
	}
	if len(got.WindowsChannels) != 2 || got.WindowsChannels[0] != "Application" {
		t.Errorf("windows_channels = %v", got.WindowsChannels)
	}
	if got.LogFormat != "json" || got.LogLevel != "debug" {
		t.Errorf("log settings = %q/%q", got.LogFormat, got.LogLevel)
	}
	if errs := got.Validate(); len(errs) != 0 {
		t.Errorf("round-tripped config should validate cleanly: %v", errs)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	got, err := Load("")
	if err != nil {
		t.Fatalf("load without config file: %v", err)
	}
	if got.RetentionDays != 7 || got.MaxEventsPerSync != 2000 {
		t.Errorf("defaults not applied: %+v", got)
	}
}
