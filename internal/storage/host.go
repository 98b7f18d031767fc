package storage

import (
	"runtime"

	"github.com/shirou/gopsutil/cpu"
)

// Host describes the machine a report was measured on. Concurrency gains
// are only comparable between reports with similar hosts.
type Host struct {
	LogicalCPUs  int    `json:"logical_cpus"`
	PhysicalCPUs int    `json:"physical_cpus"`
	CPUModel     string `json:"cpu_model,omitempty"`
	GOMAXPROCS   int    `json:"gomaxprocs"`
	GOOS         string `json:"goos"`
	GOARCH       string `json:"goarch"`
}

// DetectHost fills in whatever the platform reports. Missing values stay zero.
func DetectHost() Host {
	h := Host{
		LogicalCPUs: runtime.NumCPU(),
		GOMAXPROCS:  runtime.GOMAXPROCS(0),
		GOOS:        runtime.GOOS,
		GOARCH:      runtime.GOARCH,
	}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		h.LogicalCPUs = n
	}
	if n, err := cpu.Counts(false); err == nil {
		h.PhysicalCPUs = n
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		h.CPUModel = infos[0].ModelName
	}
	return h
}
