// Package sysinfo implements the system.info capability: best-effort
// collection of CPU, memory, and network facts. Every field is
// independently optional — a value the host cannot report is simply
// omitted, never a hard failure. GPU and disk enumeration are not
// implemented (see DESIGN.md); gpuNames/disks are always reported empty.
package sysinfo

import (
	"encoding/json"
	"net"
	"os"
	"runtime"

	"github.com/openclaw/openclaw-node/internal/capabilities"
)

// Memory reports rounded-to-2-decimal GB figures, when available.
type Memory struct {
	TotalGB *float64 `json:"totalGB,omitempty"`
	UsedGB  *float64 `json:"usedGB,omitempty"`
}

// IPAddresses splits a node's non-loopback, non-link-local addresses by
// family.
type IPAddresses struct {
	IPv4 []string `json:"ipv4"`
	IPv6 []string `json:"ipv6"`
}

// Disk reports a volume name and its capacity rounded to the nearest
// integer GB, when available.
type Disk struct {
	Name        string `json:"name"`
	CapacityGB *int   `json:"capacityGB,omitempty"`
}

// Result is the system.info payload shape.
type Result struct {
	CPUName      string      `json:"cpuName"`
	CPUCores     *int        `json:"cpuCores,omitempty"`
	CPUThreads   *int        `json:"cpuThreads,omitempty"`
	ComputerName string      `json:"computerName"`
	Memory       Memory      `json:"memory"`
	GPUNames     []string    `json:"gpuNames"`
	IP           IPAddresses `json:"ip"`
	Disks        []Disk      `json:"disks"`
}

// Collect gathers system.info. The params argument is accepted but
// unused: the capability takes no inputs.
func Collect(raw json.RawMessage) (interface{}, *capabilities.Error) {
	result := Result{
		GPUNames: []string{},
		IP:       IPAddresses{IPv4: []string{}, IPv6: []string{}},
		Disks:    []Disk{},
	}

	if name, err := os.Hostname(); err == nil {
		result.ComputerName = name
	}

	threads := runtime.NumCPU()
	result.CPUThreads = &threads
	result.CPUName = cpuName()
	if cores, ok := cpuCores(); ok {
		result.CPUCores = &cores
	}

	if mem, ok := collectMemory(); ok {
		result.Memory = mem
	}

	result.IP = collectIPs()

	return result, nil
}

func collectIPs() IPAddresses {
	out := IPAddresses{IPv4: []string{}, IPv6: []string{}}
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return out
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP
		if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			continue
		}
		if v4 := ip.To4(); v4 != nil {
			out.IPv4 = append(out.IPv4, v4.String())
			continue
		}
		out.IPv6 = append(out.IPv6, ip.String())
	}
	return out
}
