package system

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostStat is a snapshot of machine load, reported after renders.
type HostStat struct {
	CPUs          int     `json:"cpus"`
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float64 `json:"memoryPercent"`
	MemoryUsedMB  uint64  `json:"memoryUsedMb"`
	MemoryTotalMB uint64  `json:"memoryTotalMb"`
}

const cpuSampleWindow = 200 * time.Millisecond

func HostStats(ctx context.Context) (*HostStat, error) {
	counts, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return nil, err
	}
	percents, err := cpu.PercentWithContext(ctx, cpuSampleWindow, false)
	if err != nil {
		return nil, err
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}

	stat := &HostStat{
		CPUs:          counts,
		MemoryPercent: vm.UsedPercent,
		MemoryUsedMB:  vm.Used / 1024 / 1024,
		MemoryTotalMB: vm.Total / 1024 / 1024,
	}
	if len(percents) > 0 {
		stat.CPUPercent = percents[0]
	}
	return stat, nil
}
