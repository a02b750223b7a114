// Package hostinfo describes the machine the collector is running on.
package hostinfo

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/hermes-log/collector/pkg/types"
)

// Info is a snapshot of host identity used in status output.
type Info struct {
	Hostname      string            `json:"hostname"`
	OS            types.SupportedOS `json:"os"`
	OSVersion     string            `json:"osVersion"`
	KernelVersion string            `json:"kernelVersion"`
	Architecture  string            `json:"architecture"`
	UptimeSeconds int64             `json:"uptimeSeconds"`
}

// Collect gathers the host snapshot. Fields that cannot be determined are
// left at safe defaults rather than failing the whole call.
func Collect() Info {
	info := Info{
		OS:           types.DetectOS(),
		Architecture: runtime.GOARCH,
		OSVersion:    "unknown",
	}

	h, err := host.Info()
	if err != nil {
		return info
	}
	info.Hostname = h.Hostname
	if h.Platform != "" {
		info.OSVersion = h.Platform
		if h.PlatformVersion != "" {
			info.OSVersion += " " + h.PlatformVersion
		}
	}
	info.KernelVersion = h.KernelVersion
	info.UptimeSeconds = int64(h.Uptime)
	return info
}
