// Package probe detects local LLM runtimes (Ollama, LM Studio) by TCP
// connect checks on their well-known ports, optionally sweeping private
// LAN neighborhoods.
package probe

import (
	"encoding/binary"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/hermes-log/collector/internal/logging"
)

var log = logging.L("probe")

const (
	ollamaPort   = 11434
	lmStudioPort = 1234

	localTimeout = 180 * time.Millisecond
	lanTimeout   = 120 * time.Millisecond

	minLanHosts = 16
	maxLanHosts = 1024
	lanWorkers  = 64
)

// Candidate is a reachable LLM endpoint.
type Candidate struct {
	ProviderID string `json:"providerId"`
	Endpoint   string `json:"endpoint"`
	Scope      string `json:"scope"`
	Host       string `json:"host"`
	Port       int    `json:"port"`
}

type provider struct {
	id   string
	port int
}

var providers = []provider{
	{"ollama", ollamaPort},
	{"lmstudio", lmStudioPort},
}

// DetectLocal probes loopback for known providers.
func DetectLocal() []Candidate {
	return detectOnHost("127.0.0.1", "localhost", localTimeout, providers)
}

// ScanLAN probes private IPv4 neighbors of every local interface for known
// providers. maxHosts bounds the sweep and is clamped to [16, 1024].
// Results are sorted by endpoint for stable output.
func ScanLAN(maxHosts int) []Candidate {
	hosts := privateInterfaceHosts(clampHosts(maxHosts))
	if len(hosts) == 0 {
		return nil
	}
	log.Debug("scanning LAN for LLM providers", "hosts", len(hosts))

	jobs := make(chan string, lanWorkers)
	results := make(chan Candidate, len(hosts)*len(providers))
	var wg sync.WaitGroup

	for i := 0; i < lanWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for host := range jobs {
				for _, c := range detectOnHost(host, "lan", lanTimeout, providers) {
					results <- c
				}
			}
		}()
	}

	for _, host := range hosts {
		jobs <- host
	}
	close(jobs)

	wg.Wait()
	close(results)

	hits := make([]Candidate, 0, len(results))
	for c := range results {
		hits = append(hits, c)
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Endpoint < hits[j].Endpoint })
	return hits
}

func detectOnHost(host, scope string, timeout time.Duration, providers []provider) []Candidate {
	var hits []Candidate
	for _, p := range providers {
		if detectPort(host, p.port, timeout) {
			hits = append(hits, Candidate{
				ProviderID: p.id,
				Endpoint:   fmt.Sprintf("http://%s:%d", host, p.port),
				Scope:      scope,
				Host:       host,
				Port:       p.port,
			})
		}
	}
	return hits
}

func detectPort(host string, port int, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, fmt.Sprint(port)), timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func isPrivateIPv4(ip net.IP) bool {
	v4 := ip.To4()
	if v4 == nil {
		return false
	}
	return v4[0] == 10 ||
		(v4[0] == 172 && v4[1] >= 16 && v4[1] <= 31) ||
		(v4[0] == 192 && v4[1] == 168)
}

func clampHosts(n int) int {
	if n < minLanHosts {
		return minLanHosts
	}
	if n > maxLanHosts {
		return maxLanHosts
	}
	return n
}

// privateInterfaceHosts enumerates candidate neighbor addresses across all
// private IPv4 interfaces, deduplicated, capped at maxHosts total.
func privateInterfaceHosts(maxHosts int) []string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var hosts []string
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP.To4()
		if ip == nil || ip.IsLoopback() || !isPrivateIPv4(ip) {
			continue
		}
		for _, host := range hostsForInterface(ip, net.IP(ipNet.Mask), maxHosts) {
			if _, dup := seen[host]; dup {
				continue
			}
			seen[host] = struct{}{}
			hosts = append(hosts, host)
			if len(hosts) >= maxHosts {
				return hosts
			}
		}
	}
	return hosts
}

// hostsForInterface lists the usable neighbor addresses of ip's subnet,
// excluding ip itself. Subnets larger than cap are reduced to the host's
// /24 neighborhood so scan time stays bounded.
func hostsForInterface(ip, netmask net.IP, cap int) []string {
	if cap <= 0 {
		return nil
	}
	v4, mask := ip.To4(), netmask.To4()
	if v4 == nil || mask == nil {
		return nil
	}

	ipU := binary.BigEndian.Uint32(v4)
	maskU := binary.BigEndian.Uint32(mask)
	network := ipU & maskU
	broadcast := network | ^maskU

	if broadcast <= network+1 {
		return nil
	}

	var hosts []string
	if int(broadcast-network-1) <= cap {
		for h := network + 1; h < broadcast; h++ {
			if h == ipU {
				continue
			}
			hosts = append(hosts, u32ToIPv4(h))
		}
		return hosts
	}

	base := binary.BigEndian.Uint32(net.IPv4(v4[0], v4[1], v4[2], 0).To4())
	for h := base + 1; h < base+255; h++ {
		if h == ipU {
			continue
		}
		hosts = append(hosts, u32ToIPv4(h))
		if len(hosts) >= cap {
			break
		}
	}
	return hosts
}

func u32ToIPv4(v uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return net.IPv4(b[0], b[1], b[2], b[3]).String()
}
