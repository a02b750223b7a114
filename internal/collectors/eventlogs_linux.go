//go:build linux

package collectors

import (
	"strconv"

	"github.com/hermes-log/collector/pkg/types"
)

// journalCollector pulls live events from journald via the journalctl
// subprocess and imports apport / systemd-coredump crash artifacts.
type journalCollector struct{}

func newPlatformCollector() Collector {
	return journalCollector{}
}

func (journalCollector) Collect(opts Options) Result {
	max := maxEventsFor(opts.MaxEvents)
	if max == 0 {
		return Result{}
	}

	args := []string{"--no-pager", "-o", "json"}
	if opts.Start != nil {
		args = append(args, "--since", formatLocalTime(*opts.Start))
	}
	if opts.End != nil {
		args = append(args, "--until", formatLocalTime(*opts.End))
	}
	args = append(args, "-n", strconv.Itoa(max))

	return streamEvents("journalctl", "journalctl", args, max, parseJournalLine)
}

func (journalCollector) ImportCrashes(limit int) []types.CrashRecord {
	return importLinuxCrashes(limit, defaultApportRoots(), defaultCoredumpRoots())
}
