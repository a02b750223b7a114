package collectors

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hermes-log/collector/internal/fsutil"
	"github.com/hermes-log/collector/internal/taxonomy"
	"github.com/hermes-log/collector/pkg/types"
)

// DiagnosticReports are header-plus-backtrace text (.crash/.panic) or
// JSON-ish .ips; the interesting fields sit in the first screenful.
const (
	macReportMaxLines = 300
	macReportMaxBytes = 256 * 1024
)

func defaultDiagnosticReportRoots() []string {
	roots := []string{"/Library/Logs/DiagnosticReports"}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, "Library", "Logs", "DiagnosticReports"))
	}
	return roots
}

// importMacCrashes discovers DiagnosticReports artifacts and applies the
// shared dedupe/rank/cap tail.
func importMacCrashes(limit int, roots []string) []types.CrashRecord {
	files := fsutil.ScanNewest(roots, func(name string) bool {
		ext := strings.ToLower(filepath.Ext(name))
		return ext == ".crash" || ext == ".panic" || ext == ".ips"
	}, scanCapFor(limit))

	var records []types.CrashRecord
	for _, path := range files {
		records = append(records, parseDiagnosticReport(path))
	}
	return finalizeCrashes(records, limit)
}

// parseDiagnosticReport extracts a crash record via line-prefix search.
// The crash type comes from the file extension; .ips files mix JSON with
// plain "key: value" headers, so prefix search covers both shapes.
func parseDiagnosticReport(path string) types.CrashRecord {
	lines := fsutil.ReadCapped(path, macReportMaxLines, macReportMaxBytes)

	process := prefixValue(lines, "Process:")
	execPath := prefixValue(lines, "Path:")
	identifier := prefixValue(lines, "Identifier:")
	exception := pickFirst(
		prefixValue(lines, "Exception Type:"),
		prefixValue(lines, "panicString:"),
	)
	code := prefixValue(lines, "Exception Codes:")

	// "Process: Safari [4242]" carries the pid suffix.
	if i := strings.Index(process, "["); i > 0 {
		process = strings.TrimSpace(process[:i])
	}

	crashType := "Application Crash"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".panic":
		crashType = "Kernel Panic"
	case ".ips":
		crashType = "Crash Report"
	}

	subject := pickFirst(process, identifier)
	summary := filepath.Base(path)
	switch {
	case subject != "" && exception != "":
		summary = crashType + ": " + subject + " (" + exception + ")"
	case subject != "":
		summary = crashType + ": " + subject
	case exception != "":
		summary = crashType + ": " + exception
	}

	return types.CrashRecord{
		ID:                 taxonomy.CrashID(string(types.OSMacOS), "DiagnosticReports", crashType, path),
		Timestamp:          crashTimestamp(fsutil.ModTime(path)),
		OS:                 types.OSMacOS,
		Source:             "DiagnosticReports",
		CrashType:          crashType,
		Code:               code,
		Summary:            summary,
		SuspectedComponent: componentFromPath(pickFirst(execPath, process, identifier)),
		RawPath:            path,
		Imported:           true,
	}
}

// prefixValue finds the first line starting with prefix and returns the
// trimmed remainder.
func prefixValue(lines []string, prefix string) string {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
		}
	}
	return ""
}
