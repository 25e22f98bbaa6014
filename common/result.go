package common

import (
	"runtime"
	"time"

	"github.com/xor-shift/pibench/montecarlo"
)

const (
	ModeSingle   = "single"
	ModeParallel = "parallel"
)

// Result is the document every benchmark program prints on completion.
type Result struct {
	Language    string  `json:"language" mapstructure:"language"`
	Variant     string  `json:"variant" mapstructure:"variant"`
	Version     string  `json:"version" mapstructure:"version"`
	Mode        string  `json:"mode" mapstructure:"mode"`
	Iterations  uint64  `json:"iterations" mapstructure:"iterations"`
	PiEstimate  float64 `json:"pi_estimate" mapstructure:"pi_estimate"`
	Error       float64 `json:"error" mapstructure:"error"`
	TimeMS      float64 `json:"time_ms" mapstructure:"time_ms"`
	MemoryMB    float64 `json:"memory_mb" mapstructure:"memory_mb"`
	CPUCores    int     `json:"cpu_cores" mapstructure:"cpu_cores"`
	ThreadCount int     `json:"thread_count" mapstructure:"thread_count"`
	OS          string  `json:"os" mapstructure:"os"`
	Compiler    string  `json:"compiler" mapstructure:"compiler"`
	Seed        uint64  `json:"seed" mapstructure:"seed"`
	Partition   string  `json:"partition,omitempty" mapstructure:"partition"`
}

type AMQPPacket struct {
	RunID  string `json:"runId"`
	Result Result `json:"result"`
}

// NewResult describes a finished run of this binary.
func NewResult(estimate montecarlo.Estimate, mode string, threads int, seed uint64, elapsed time.Duration) Result {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return Result{
		Language:    "Go",
		Variant:     "standard",
		Version:     runtime.Version(),
		Mode:        mode,
		Iterations:  estimate.Iterations,
		PiEstimate:  estimate.Pi,
		Error:       estimate.AbsError,
		TimeMS:      float64(elapsed.Nanoseconds()) / 1e6,
		MemoryMB:    float64(memStats.Sys) / 1024 / 1024,
		CPUCores:    runtime.NumCPU(),
		ThreadCount: threads,
		OS:          runtime.GOOS,
		Compiler:    runtime.Compiler,
		Seed:        seed,
	}
}
