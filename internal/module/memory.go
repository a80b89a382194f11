package module

import (
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessMemoryMB returns this process's resident set size in MB, or 0
// if it cannot be read. Modules report it in MetricsData.
func ProcessMemoryMB() float64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	mi, err := proc.MemoryInfo()
	if err != nil || mi == nil {
		return 0
	}
	return float64(mi.RSS) / 1024 / 1024
}
