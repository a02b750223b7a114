package collectors

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hermes-log/collector/internal/fsutil"
	"github.com/hermes-log/collector/internal/taxonomy"
	"github.com/hermes-log/collector/pkg/types"
)

// Windows Error Reporting caps. Report.wer files are small key=value text;
// anything past these bounds is boilerplate signature data.
const (
	werMaxLines = 600
	werMaxBytes = 512 * 1024
)

// defaultWERRoots resolves the well-known Windows crash locations. The WER
// store lives under the environment-resolved ProgramData base; the kernel
// dump locations are fixed.
func defaultWERRoots() (werDirs, dumpDirs []string) {
	programData := os.Getenv("ProgramData")
	if programData == "" {
		programData = `C:\ProgramData`
	}
	werDirs = []string{
		filepath.Join(programData, "Microsoft", "Windows", "WER", "ReportQueue"),
		filepath.Join(programData, "Microsoft", "Windows", "WER", "ReportArchive"),
	}
	dumpDirs = []string{`C:\Windows\Minidump`}
	return werDirs, dumpDirs
}

const defaultMemoryDumpPath = `C:\Windows\MEMORY.DMP`

// importWindowsCrashes discovers WER reports and memory dumps, parses each
// into a crash record, and applies the shared dedupe/rank/cap tail. The
// full kernel dump is a single well-known file, so it is probed directly
// instead of scanning all of the Windows directory.
func importWindowsCrashes(limit int, werDirs, dumpDirs []string, memoryDump string) []types.CrashRecord {
	scanCap := scanCapFor(limit)

	var records []types.CrashRecord
	werFiles := fsutil.ScanNewest(werDirs, func(name string) bool {
		return strings.EqualFold(filepath.Ext(name), ".wer")
	}, scanCap)
	for _, path := range werFiles {
		records = append(records, parseWERReport(path))
	}

	dumpFiles := fsutil.ScanNewest(dumpDirs, func(name string) bool {
		return strings.EqualFold(filepath.Ext(name), ".dmp")
	}, scanCap)
	for _, path := range dumpFiles {
		records = append(records, dumpRecord(path))
	}

	if memoryDump != "" && !fsutil.ModTime(memoryDump).IsZero() {
		records = append(records, dumpRecord(memoryDump))
	}

	return finalizeCrashes(records, limit)
}

// parseWERReport extracts a crash record from a Report.wer key=value file.
// Every logical field is resolved through an ordered fallback key list;
// the first non-empty match wins.
func parseWERReport(path string) types.CrashRecord {
	fields := parseKeyValueLines(fsutil.ReadCapped(path, werMaxLines, werMaxBytes), "=")

	crashType := pickFirst(
		fields["FriendlyEventName"],
		fields["ProblemType"],
		fields["Sig[0].Value"],
		fields["Sig[1].Value"],
		fields["EventType"],
		"Application Crash",
	)
	app := pickFirst(fields["AppName"], fields["Sig[0].Value"])
	appPath := pickFirst(fields["AppPath"], fields["TargetAppId"])
	code := pickFirst(fields["ExceptionCode"], fields["Sig[6].Value"])

	summary := pickFirst(fields["EventFriendlyDescription"], fields["ReportDescription"])
	if app != "" {
		summary = crashType + ": " + app
	}
	if summary == "" {
		summary = filepath.Base(path)
	}

	component := componentFromPath(pickFirst(app, appPath))

	return types.CrashRecord{
		ID:                 taxonomy.CrashID(string(types.OSWindows), "WER", crashType, path),
		Timestamp:          crashTimestamp(fsutil.ModTime(path)),
		OS:                 types.OSWindows,
		Source:             "WER",
		CrashType:          crashType,
		Code:               code,
		Summary:            summary,
		SuspectedComponent: component,
		RawPath:            path,
		Imported:           true,
	}
}

// dumpRecord classifies a raw dump file. The full kernel dump is a fixed
// name; everything else under the minidump directory is a minidump.
func dumpRecord(path string) types.CrashRecord {
	name := filepath.Base(path)

	crashType := "Minidump"
	source := "Minidump"
	if strings.EqualFold(name, "MEMORY.DMP") {
		crashType = "Kernel Memory Dump"
		source = "KernelDump"
	}

	return types.CrashRecord{
		ID:                 taxonomy.CrashID(string(types.OSWindows), source, crashType, path),
		Timestamp:          crashTimestamp(fsutil.ModTime(path)),
		OS:                 types.OSWindows,
		Source:             source,
		CrashType:          crashType,
		Summary:            crashType + ": " + name,
		SuspectedComponent: name,
		RawPath:            path,
		Imported:           true,
	}
}

// parseKeyValueLines splits "Key<sep>Value" lines into a map, keeping the
// first occurrence of each key.
func parseKeyValueLines(lines []string, sep string) map[string]string {
	fields := make(map[string]string, len(lines))
	for _, line := range lines {
		key, value, found := strings.Cut(line, sep)
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		if _, exists := fields[key]; !exists {
			fields[key] = value
		}
	}
	return fields
}
