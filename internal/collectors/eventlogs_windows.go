//go:build windows

package collectors

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sys/windows"

	"github.com/hermes-log/collector/pkg/types"
)

// winEventCollector pulls live events through the structured event-query
// API and imports WER reports and memory dumps.
type winEventCollector struct{}

func newPlatformCollector() Collector {
	return winEventCollector{}
}

// defaultChannels is both the default channel set and the allow-list for
// caller-supplied subsets.
var defaultChannels = []string{"Application", "System", "Security"}

const evtBatchSize = 64

func (winEventCollector) Collect(opts Options) Result {
	max := maxEventsFor(opts.MaxEvents)
	if max == 0 {
		return Result{}
	}

	var result Result
	query := timeRangeQuery(opts.Start, opts.End)

	// Channels are queried sequentially. Access denial on the Security
	// channel means insufficient privilege and contributes zero events;
	// any other channel failure aborts the whole call.
	for _, channel := range allowedChannels(opts.Channels) {
		remaining := max - len(result.Events)
		if remaining <= 0 {
			break
		}

		events, warning, err := collectChannel(channel, query, remaining)
		if err != nil {
			if strings.EqualFold(channel, "Security") && errors.Is(err, windows.ERROR_ACCESS_DENIED) {
				result.Warnings = append(result.Warnings,
					"access to the Security channel was denied; continuing without it")
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("channel %s: %v", channel, err))
			result.Events = nil
			return result
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Events = append(result.Events, events...)
	}
	return result
}

func (winEventCollector) ImportCrashes(limit int) []types.CrashRecord {
	werDirs, dumpDirs := defaultWERRoots()
	return importWindowsCrashes(limit, werDirs, dumpDirs, defaultMemoryDumpPath)
}

// allowedChannels filters a caller-supplied subset against the allow-list,
// falling back to the full default set.
func allowedChannels(requested []string) []string {
	if len(requested) == 0 {
		return defaultChannels
	}
	var channels []string
	for _, want := range requested {
		for _, allowed := range defaultChannels {
			if strings.EqualFold(want, allowed) {
				channels = append(channels, allowed)
				break
			}
		}
	}
	if len(channels) == 0 {
		return defaultChannels
	}
	return channels
}

// timeRangeQuery translates the optional collection window into a
// structured filter on the System/TimeCreated timestamp.
func timeRangeQuery(start, end *time.Time) string {
	var conds []string
	if start != nil {
		conds = append(conds, fmt.Sprintf("@SystemTime>='%s'", start.UTC().Format("2006-01-02T15:04:05.000Z")))
	}
	if end != nil {
		conds = append(conds, fmt.Sprintf("@SystemTime<='%s'", end.UTC().Format("2006-01-02T15:04:05.000Z")))
	}
	if len(conds) == 0 {
		return "*"
	}
	return fmt.Sprintf("*[System[TimeCreated[%s]]]", strings.Join(conds, " and "))
}

// collectChannel drains up to max events from one channel, pulling in
// small batches and abandoning the query once the cap is reached. A batch
// failure after successful ones degrades to a warning alongside the
// partial result; it does not discard.
func collectChannel(channel, query string, max int) ([]types.NormalizedEvent, string, error) {
	resultSet, err := evtQuery(channel, query)
	if err != nil {
		return nil, "", err
	}
	defer evtClose(resultSet)

	var events []types.NormalizedEvent
	handles := make([]evtHandle, evtBatchSize)
	for len(events) < max {
		n, done, err := evtNext(resultSet, handles)
		if err != nil {
			if len(events) > 0 {
				return events, partialChannelWarning(channel, len(events), err), nil
			}
			return nil, "", err
		}
		if done {
			break
		}

		for _, h := range handles[:n] {
			if len(events) < max {
				if event, ok := renderEvent(channel, h); ok {
					events = append(events, event)
				}
			}
			evtClose(h)
		}
	}
	return events, "", nil
}

func partialChannelWarning(channel string, collected int, err error) string {
	return fmt.Sprintf("channel %s: event read failed after %d events: %v", channel, collected, err)
}

// renderEvent renders one event handle to XML and normalizes it. The
// formatted message requires per-provider metadata and regularly fails for
// uninstalled providers, in which case the data-field fallback applies.
func renderEvent(channel string, h evtHandle) (types.NormalizedEvent, bool) {
	xml, err := evtRenderXML(h)
	if err != nil || xml == "" {
		return types.NormalizedEvent{}, false
	}

	formatted := ""
	if provider := xmlAttr(xml, "Provider", "Name"); provider != "" {
		if message, err := evtFormatMessage(provider, h); err == nil {
			formatted = message
		}
	}

	return normalizeWinEvent(xml, formatted, channel), true
}
