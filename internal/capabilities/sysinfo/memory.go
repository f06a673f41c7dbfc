package sysinfo

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

const kbToGB = 1024.0 * 1024.0

// collectMemory makes a best-effort attempt at total/used memory in GB by
// parsing /proc/meminfo. Used is derived from MemTotal-MemAvailable, falling
// back to MemTotal-MemFree when the kernel doesn't report MemAvailable
// (pre-3.14). Returns false when no figures could be read.
func collectMemory() (Memory, bool) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return Memory{}, false
	}
	defer f.Close()

	fields := map[string]float64{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(parts[1]), "kB"))
		value = strings.TrimSpace(value)
		kb, err := strconv.ParseFloat(value, 64)
		if err != nil {
			continue
		}
		fields[key] = kb
	}

	totalKB, ok := fields["MemTotal"]
	if !ok {
		return Memory{}, false
	}
	totalGB := roundTo2(totalKB / kbToGB)
	mem := Memory{TotalGB: &totalGB}

	availableKB, hasAvailable := fields["MemAvailable"]
	if !hasAvailable {
		availableKB, hasAvailable = fields["MemFree"]
	}
	if hasAvailable {
		usedGB := roundTo2((totalKB - availableKB) / kbToGB)
		mem.UsedGB = &usedGB
	}
	return mem, true
}

func roundTo2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
