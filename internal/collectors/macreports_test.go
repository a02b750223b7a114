package collectors

import (
	"path/filepath"
	"testing"

	"github.com/hermes-log/collector/pkg/types"
)

func TestParseDiagnosticReportCrash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Safari_2026-03-01-104200_host.crash")
	writeTestFile(t, path, "Process:               Safari [4242]\n"+
		"Path:                  /Applications/Safari.app/Contents/MacOS/Safari\n"+
		"Identifier:            com.apple.Safari\n"+
		"Exception Type:        EXC_BAD_ACCESS (SIGSEGV)\n"+
		"Exception Codes:       KERN_INVALID_ADDRESS at 0x0\n")

	record := parseDiagnosticReport(path)

	if record.CrashType != "Application Crash" {
		t.Errorf("crashType = %q", record.CrashType)
	}
	if record.Summary != "Application Crash: Safari (EXC_BAD_ACCESS (SIGSEGV))" {
		t.Errorf("summary = %q", record.Summary)
	}
	if record.SuspectedComponent != "Safari" {
		t.Errorf("suspectedComponent = %q", record.SuspectedComponent)
	}
	if record.Code != "KERN_INVALID_ADDRESS at 0x0" {
		t.Errorf("code = %q", record.Code)
	}
	if record.Source != "DiagnosticReports" || record.OS != types.OSMacOS {
		t.Errorf("source/os = %s/%s", record.Source, record.OS)
	}
}

func TestParseDiagnosticReportPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Kernel_2026-03-01.panic")
	writeTestFile(t, path, "panicString: panic(cpu 2 caller 0xfffffe001): watchdog timeout\n")

	record := parseDiagnosticReport(path)
	if record.CrashType != "Kernel Panic" {
		t.Errorf("crashType = %q", record.CrashType)
	}
	if record.Summary != "Kernel Panic: panic(cpu 2 caller 0xfffffe001): watchdog timeout" {
		t.Errorf("summary = %q", record.Summary)
	}
}

func TestParseDiagnosticReportIPSType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MyApp-2026-03-01-104200.ips")
	writeTestFile(t, path, `{"app_name":"MyApp","timestamp":"2026-03-01 10:42:00"}`+"\n")

	record := parseDiagnosticReport(path)
	if record.CrashType != "Crash Report" {
		t.Errorf("crashType = %q", record.CrashType)
	}
	// Nothing extractable: summary falls back to the file name.
	if record.Summary != "MyApp-2026-03-01-104200.ips" {
		t.Errorf("summary = %q", record.Summary)
	}
}

func TestImportMacCrashes(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.crash"), "Process: A [1]\nException Type: EXC_CRASH\n")
	writeTestFile(t, filepath.Join(dir, "b.panic"), "panicString: oops\n")
	writeTestFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	records := importMacCrashes(10, []string{dir})
	if len(records) != 2 {
		t.Fatalf("want 2 records, got %d", len(records))
	}
	for _, r := range records {
		if r.Summary == "" {
			t.Errorf("empty summary in %+v", r)
		}
		if !r.Imported {
			t.Errorf("imported flag missing on %s", r.ID)
		}
	}
}
