package sysinfo

import (
	"encoding/json"
	"runtime"
	"testing"
)

func TestCollectMemoryOnLinux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("memory collection is only implemented via /proc/meminfo on linux")
	}
	mem, ok := collectMemory()
	if !ok {
		t.Fatalf("expected /proc/meminfo to be readable")
	}
	if mem.TotalGB == nil || *mem.TotalGB <= 0 {
		t.Fatalf("expected a positive totalGB, got %+v", mem.TotalGB)
	}
}

func TestCPUCoresOnLinux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("cpu core counting is only implemented via /proc/cpuinfo on linux")
	}
	cores, ok := cpuCores()
	if !ok {
		t.Fatalf("expected /proc/cpuinfo to be readable")
	}
	if cores <= 0 {
		t.Fatalf("expected a positive core count, got %d", cores)
	}
}

func TestCollectReportsThreadsAndHostname(t *testing.T) {
	res, cErr := Collect(json.RawMessage(`{}`))
	if cErr != nil {
		t.Fatalf("unexpected error: %v", cErr)
	}
	result := res.(Result)
	if result.CPUThreads == nil || *result.CPUThreads != runtime.NumCPU() {
		t.Fatalf("unexpected cpu threads: %+v", result.CPUThreads)
	}
	if result.CPUName == "" {
		t.Fatalf("expected non-empty cpu name")
	}
	if runtime.GOOS == "linux" {
		if result.CPUCores == nil || *result.CPUCores <= 0 {
			t.Fatalf("expected cpuCores populated on linux, got %+v", result.CPUCores)
		}
		if result.Memory.TotalGB == nil || *result.Memory.TotalGB <= 0 {
			t.Fatalf("expected memory.totalGB populated on linux, got %+v", result.Memory)
		}
	}
	if result.IP.IPv4 == nil || result.IP.IPv6 == nil {
		t.Fatalf("expected initialized (possibly empty) ip slices, got %+v", result.IP)
	}
	if result.GPUNames == nil || result.Disks == nil {
		t.Fatalf("expected initialized slices for gpuNames/disks")
	}
}

func TestCollectIgnoresParams(t *testing.T) {
	res, cErr := Collect(json.RawMessage(`{"unused":"field"}`))
	if cErr != nil {
		t.Fatalf("unexpected error: %v", cErr)
	}
	if _, ok := res.(Result); !ok {
		t.Fatalf("expected Result type, got %T", res)
	}
}

func TestCollectIPsExcludesLoopback(t *testing.T) {
	ips := collectIPs()
	for _, v4 := range ips.IPv4 {
		if v4 == "127.0.0.1" {
			t.Fatalf("expected loopback address excluded, got %+v", ips)
		}
	}
}
