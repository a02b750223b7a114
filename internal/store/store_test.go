package store

import (
	"path/filepath"
	"testing"

	"github.com/hermes-log/collector/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testEvent(id, ts, severity string) types.NormalizedEvent {
	return types.NormalizedEvent{
		ID:        id,
		Timestamp: ts,
		OS:        types.OSLinux,
		LogName:   "systemd",
		Category:  "system",
		Provider:  "systemd",
		Severity:  severity,
		Message:   "unit entered failed state",
	}
}

func TestSaveEventsUpsert(t *testing.T) {
	s := openTestStore(t)

	ev := testEvent("ev-1", "2026-03-01T10:00:00Z", "error")
	ev.EventID = types.Uint32(41)
	if err := s.SaveEvents([]types.NormalizedEvent{ev}); err != nil {
		t.Fatal(err)
	}

	ev.Message = "updated message"
	if err := s.SaveEvents([]types.NormalizedEvent{ev}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Events(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 event after upsert, got %d", len(got))
	}
	if got[0].Message != "updated message" {
		t.Errorf("message = %q", got[0].Message)
	}
	if got[0].EventID == nil || *got[0].EventID != 41 {
		t.Errorf("event id not round-tripped: %v", got[0].EventID)
	}
}

func TestEventsOrderAndLimit(t *testing.T) {
	s := openTestStore(t)

	events := []types.NormalizedEvent{
		testEvent("a", "2026-03-01T10:00:00Z", "info"),
		testEvent("b", "2026-03-01T12:00:00Z", "error"),
		testEvent("c", "2026-03-01T11:00:00Z", "warning"),
	}
	if err := s.SaveEvents(events); err != nil {
		t.Fatal(err)
	}

	got, err := s.Events(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("limit not applied: got %d", len(got))
	}
	if got[0].ID != "b" || got[1].ID != "c" {
		t.Errorf("order = %s, %s; want b, c", got[0].ID, got[1].ID)
	}
}

func TestSaveCrashesRoundTrip(t *testing.T) {
	s := openTestStore(t)

	cr := types.CrashRecord{
		ID:                 "imported-00000000deadbeef",
		Timestamp:          "2026-03-01T09:30:00Z",
		OS:                 types.OSWindows,
		Source:             "WER",
		CrashType:          "BSOD",
		Code:               "0x0000009F",
		Summary:            "DRIVER_POWER_STATE_FAILURE",
		SuspectedComponent: "nvlddmkm.sys",
		RawPath:            `C:\Windows\Minidump\030126-1234-01.dmp`,
		Imported:           true,
	}
	bare := types.CrashRecord{
		ID:        "imported-0000000000000001",
		Timestamp: "2026-03-01T08:00:00Z",
		OS:        types.OSLinux,
		Source:    "apport",
		CrashType: "Application Crash",
		Summary:   "crash report for firefox",
		Imported:  true,
	}
	if err := s.SaveCrashes([]types.CrashRecord{cr, bare}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Crashes(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 crashes, got %d", len(got))
	}
	if got[0] != cr {
		t.Errorf("full record mismatch:\n got %+v\nwant %+v", got[0], cr)
	}
	if got[1] != bare {
		t.Errorf("record with NULL optionals mismatch:\n got %+v\nwant %+v", got[1], bare)
	}
}

func TestPruneEventsBefore(t *testing.T) {
	s := openTestStore(t)

	events := []types.NormalizedEvent{
		testEvent("old", "2026-01-01T00:00:00Z", "info"),
		testEvent("new", "2026-03-01T00:00:00Z", "info"),
	}
	if err := s.SaveEvents(events); err != nil {
		t.Fatal(err)
	}

	deleted, err := s.PruneEventsBefore("2026-02-01T00:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	got, err := s.Events(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("remaining events = %+v", got)
	}
}

func TestCrashNeighbors(t *testing.T) {
	s := openTestStore(t)

	crash := types.CrashRecord{
		ID:        "crash-1",
		Timestamp: "2026-03-01T12:00:00Z",
		OS:        types.OSLinux,
		Source:    "kdump",
		CrashType: "Kernel Panic",
		Summary:   "kernel panic",
		Imported:  true,
	}
	if err := s.SaveCrashes([]types.CrashRecord{crash}); err != nil {
		t.Fatal(err)
	}

	events := []types.NormalizedEvent{
		testEvent("near", "2026-03-01T11:58:00Z", "error"),
		testEvent("nearer", "2026-03-01T12:01:00Z", "warning"),
		testEvent("far", "2026-03-01T10:00:00Z", "error"),
	}
	otherOS := testEvent("other-os", "2026-03-01T12:00:30Z", "error")
	otherOS.OS = types.OSWindows
	events = append(events, otherOS)
	if err := s.SaveEvents(events); err != nil {
		t.Fatal(err)
	}

	got, err := s.CrashNeighbors("crash-1", 15, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 correlated events, got %d: %+v", len(got), got)
	}
	if got[0].ID != "nearer" || got[1].ID != "near" {
		t.Errorf("closeness order = %s, %s; want nearer, near", got[0].ID, got[1].ID)
	}
}

func TestCrashNeighborsUnknownCrash(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveEvents([]types.NormalizedEvent{
		testEvent("a", "2026-03-01T12:00:00Z", "info"),
	}); err != nil {
		t.Fatal(err)
	}

	got, err := s.CrashNeighbors("no-such-crash", 15, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no events for unknown crash, got %d", len(got))
	}
}
