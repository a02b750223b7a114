package collectors

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hermes-log/collector/pkg/types"
)

// finalizeCrashes applies the shared tail of every importer: dedupe by id
// with first occurrence winning, rank by timestamp descending, truncate to
// the clamped limit. Records arrive in scanner order (newest file first),
// so the stable sort keeps that order as the tie-break.
func finalizeCrashes(records []types.CrashRecord, limit int) []types.CrashRecord {
	limit = clampCrashLimit(limit)

	seen := make(map[string]struct{}, len(records))
	unique := records[:0]
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		unique = append(unique, r)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Timestamp > unique[j].Timestamp
	})
	if len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

// scanCapFor is the over-collection cap handed to the filesystem scanner.
func scanCapFor(limit int) int {
	return clampCrashLimit(limit) * crashOverScan
}

// crashTimestamp picks the artifact's modification time when it is
// resolvable, else the generation time.
func crashTimestamp(modTime time.Time) string {
	if modTime.IsZero() {
		return time.Now().UTC().Format(time.RFC3339)
	}
	return modTime.UTC().Format(time.RFC3339)
}

// SampleCrash builds the per-OS synthetic crash used to exercise the
// storage and correlation paths on hosts with no real artifacts. Sample
// crashes carry a random id and are not marked imported.
func SampleCrash(os types.SupportedOS) types.CrashRecord {
	record := types.CrashRecord{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		OS:        os,
		Imported:  false,
	}

	switch os {
	case types.OSWindows:
		record.Source = "WER"
		record.CrashType = "BSOD"
		record.Code = "0x0000009F"
		record.Summary = "Bugcheck indicates DRIVER_POWER_STATE_FAILURE during resume."
		record.SuspectedComponent = "nvlddmkm.sys"
		record.RawPath = `C:\Windows\Minidump\sample.dmp`
	case types.OSMacOS:
		record.Source = "DiagnosticReports"
		record.CrashType = "Kernel Panic"
		record.Code = "panic(cpu 0 caller 0xffff...)"
		record.Summary = "Kernel panic appears related to GPU watchdog timeout."
		record.SuspectedComponent = "AppleGPUWrangler"
		record.RawPath = "/Library/Logs/DiagnosticReports/Kernel_sample.panic"
	default:
		record.Source = "kdump"
		record.CrashType = "Kernel Panic"
		record.Code = "kernel panic - not syncing"
		record.Summary = "Kernel panic likely triggered by filesystem I/O timeout."
		record.SuspectedComponent = "ext4"
		record.RawPath = "/var/crash/vmcore"
	}
	return record
}
