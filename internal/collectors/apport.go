package collectors

import (
	"path/filepath"
	"strings"

	"github.com/hermes-log/collector/internal/fsutil"
	"github.com/hermes-log/collector/internal/taxonomy"
	"github.com/hermes-log/collector/pkg/types"
)

// Apport reports are RFC822-style "Key: value" text followed by large
// base64 attachments; the caps keep the read inside the header region.
const (
	apportMaxLines = 400
	apportMaxBytes = 256 * 1024
)

func defaultApportRoots() []string {
	return []string{"/var/crash"}
}

func defaultCoredumpRoots() []string {
	return []string{"/var/lib/systemd/coredump"}
}

// importLinuxCrashes discovers apport .crash files and systemd-coredump
// artifacts and applies the shared dedupe/rank/cap tail.
func importLinuxCrashes(limit int, apportRoots, coredumpRoots []string) []types.CrashRecord {
	scanCap := scanCapFor(limit)

	var records []types.CrashRecord
	crashFiles := fsutil.ScanNewest(apportRoots, func(name string) bool {
		return strings.HasSuffix(name, ".crash")
	}, scanCap)
	for _, path := range crashFiles {
		records = append(records, parseApportReport(path))
	}

	coreFiles := fsutil.ScanNewest(coredumpRoots, func(name string) bool {
		return strings.HasPrefix(name, "core.")
	}, scanCap)
	for _, path := range coreFiles {
		records = append(records, coredumpRecord(path))
	}

	return finalizeCrashes(records, limit)
}

// parseApportReport extracts a crash record from an apport report using
// ordered fallback key lists for each logical field.
func parseApportReport(path string) types.CrashRecord {
	fields := parseKeyValueLines(fsutil.ReadCapped(path, apportMaxLines, apportMaxBytes), ":")

	crashType := pickFirst(fields["ProblemType"], "Crash")
	if signal := pickFirst(fields["Signal"], fields["SignalName"]); signal != "" {
		crashType = crashType + " (signal " + signal + ")"
	}
	executable := pickFirst(fields["ExecutablePath"], fields["InterpreterPath"], fields["ProcCmdline"])
	code := pickFirst(fields["Signal"], fields["ExitCode"])

	summary := pickFirst(fields["Title"], fields["ProcCmdline"])
	if executable != "" {
		summary = crashType + ": " + executable
	}
	if summary == "" {
		summary = filepath.Base(path)
	}

	return types.CrashRecord{
		ID:                 taxonomy.CrashID(string(types.OSLinux), "apport", crashType, path),
		Timestamp:          crashTimestamp(fsutil.ModTime(path)),
		OS:                 types.OSLinux,
		Source:             "apport",
		CrashType:          crashType,
		Code:               code,
		Summary:            summary,
		SuspectedComponent: componentFromPath(executable),
		RawPath:            path,
		Imported:           true,
	}
}

// coredumpRecord classifies a systemd-coredump artifact. File names follow
// the core.<process>.<uid>.<boot-id>.<pid>.<timestamp> convention, so the
// crashing process is the second dot-separated token.
func coredumpRecord(path string) types.CrashRecord {
	name := filepath.Base(path)

	process := ""
	if parts := strings.Split(name, "."); len(parts) >= 2 {
		process = parts[1]
	}

	summary := "Core dump: " + name
	if process != "" {
		summary = "Core dump from process " + process
	}

	return types.CrashRecord{
		ID:                 taxonomy.CrashID(string(types.OSLinux), "systemd-coredump", "Core Dump", path),
		Timestamp:          crashTimestamp(fsutil.ModTime(path)),
		OS:                 types.OSLinux,
		Source:             "systemd-coredump",
		CrashType:          "Core Dump",
		Summary:            summary,
		SuspectedComponent: componentFromPath(process),
		RawPath:            path,
		Imported:           true,
	}
}
