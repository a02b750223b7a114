package collectors

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAllowedChannels(t *testing.T) {
	tests := []struct {
		name      string
		requested []string
		want      []string
	}{
		{"empty uses defaults", nil, []string{"Application", "System", "Security"}},
		{"subset kept", []string{"system"}, []string{"System"}},
		{"case-insensitive", []string{"SECURITY", "application"}, []string{"Security", "Application"}},
		{"unknown dropped", []string{"System", "Setup"}, []string{"System"}},
		{"all unknown falls back", []string{"Setup", "Bogus"}, []string{"Application", "System", "Security"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := allowedChannels(tt.requested)
			if len(got) != len(tt.want) {
				t.Fatalf("channels = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("channels = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestTimeRangeQuery(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := timeRangeQuery(nil, nil); got != "*" {
		t.Errorf("open window query = %q", got)
	}

	got := timeRangeQuery(&start, &end)
	want := "*[System[TimeCreated[@SystemTime>='2026-03-01T10:00:00.000Z' and @SystemTime<='2026-03-01T12:00:00.000Z']]]"
	if got != want {
		t.Errorf("query = %q, want %q", got, want)
	}

	if got := timeRangeQuery(&start, nil); !strings.Contains(got, ">=") || strings.Contains(got, "<=") {
		t.Errorf("start-only query = %q", got)
	}
}

func TestPartialChannelWarning(t *testing.T) {
	got := partialChannelWarning("System", 37, errors.New("handle is invalid"))
	if !strings.Contains(got, "System") || !strings.Contains(got, "37") || !strings.Contains(got, "handle is invalid") {
		t.Errorf("warning = %q", got)
	}
}
