//go:build darwin

package collectors

import (
	"github.com/hermes-log/collector/pkg/types"
)

// unifiedLogCollector pulls live events from the macOS unified log via the
// `log show` subprocess and imports DiagnosticReports crash artifacts.
type unifiedLogCollector struct{}

func newPlatformCollector() Collector {
	return unifiedLogCollector{}
}

func (unifiedLogCollector) Collect(opts Options) Result {
	max := maxEventsFor(opts.MaxEvents)
	if max == 0 {
		return Result{}
	}

	args := []string{"show", "--style", "json"}
	if opts.Start != nil {
		args = append(args, "--start", formatLocalTime(*opts.Start))
	}
	if opts.End != nil {
		args = append(args, "--end", formatLocalTime(*opts.End))
	}

	return streamEvents("macOS log collector", "log", args, max, parseUnifiedLogLine)
}

func (unifiedLogCollector) ImportCrashes(limit int) []types.CrashRecord {
	return importMacCrashes(limit, defaultDiagnosticReportRoots())
}
