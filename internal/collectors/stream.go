package collectors

import (
	"bufio"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hermes-log/collector/internal/logging"
	"github.com/hermes-log/collector/pkg/types"
)

var log = logging.L("collectors")

// lineParser turns one line of subprocess output into an event, or reports
// that the line was unusable.
type lineParser func(line string) (types.NormalizedEvent, bool)

// streamEvents spawns the named reader process, synchronously drains its
// stdout line by line, and parses each line into an event. Reaching max
// kills the subprocess rather than waiting for natural exit, bounding
// worst-case latency on unbounded native log volume. The handle is released
// on every exit path. label names the source in diagnostics ("journalctl",
// "macOS log collector").
func streamEvents(label, binary string, args []string, max int, parse lineParser) Result {
	var result Result
	if max <= 0 {
		return result
	}

	cmd := exec.Command(binary, args...)
	cmd.Stderr = nil

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s did not expose stdout: %v", label, err))
		return result
	}

	if err := cmd.Start(); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to run %s: %v", label, err))
		return result
	}

	var (
		parseFailures int
		killed        bool
	)
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		event, ok := parse(line)
		if !ok {
			parseFailures++
			continue
		}
		result.Events = append(result.Events, event)
		if len(result.Events) >= max {
			killed = true
			_ = cmd.Process.Kill()
			break
		}
	}
	if err := scanner.Err(); err != nil && !killed {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s stdout read failed: %v", label, err))
	}

	if parseFailures > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("skipped %d non-JSON or malformed %s entries", parseFailures, label))
	}

	waitErr := cmd.Wait()
	if waitErr != nil && !killed {
		message := fmt.Sprintf("%s exited abnormally: %v", label, waitErr)
		if len(result.Events) == 0 {
			result.Errors = append(result.Errors, message)
		} else {
			result.Warnings = append(result.Warnings, message)
		}
	}

	log.Debug("stream collection finished",
		"source", label, "events", len(result.Events), "skipped", parseFailures)
	return result
}
