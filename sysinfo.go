package main

import (
	"runtime"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

// SysInfo identifies the machine a benchmark ran on. Solver timings are only
// comparable between runs when this matches.
type SysInfo struct {
	Arch     string
	Hostname string
	Platform string
	CPUCount int
	CPUFreq  float64
	RAM      float64
}

func HostStat() SysInfo {
	hostStat, _ := host.Info()
	cpuStat, _ := cpu.Info()
	vmStat, _ := mem.VirtualMemory()
	totalFreq := 0.0
	for _, cpu := range cpuStat {
		totalFreq += cpu.Mhz
	}
	info := SysInfo{Arch: runtime.GOARCH, CPUCount: len(cpuStat)}
	if hostStat != nil {
		info.Hostname = hostStat.Hostname
		info.Platform = hostStat.Platform
	}
	if len(cpuStat) > 0 {
		info.CPUFreq = totalFreq / float64(len(cpuStat)) * 1000
	}
	if vmStat != nil {
		info.RAM = float64(vmStat.Total) / 1024 / 1024 / 1024
	}
	return info
}

// Parameters renders the host description as remote database parameters.
func (info SysInfo) Parameters() map[string]any {
	return map[string]any{
		"arch":     info.Arch,
		"hostname": info.Hostname,
		"platform": info.Platform,
		"ram":      info.RAM,
		"cpu":      info.CPUCount,
		"freq":     info.CPUFreq,
	}
}
