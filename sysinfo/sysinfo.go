// Package sysinfo reports memory, host and runtime figures for the
// sysinfo command.
package sysinfo

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/jmgilman/busybox/internal/logging"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

var started = time.Now()

// Report is a snapshot of the machine and the running process.
type Report struct {
	Memory  Memory
	System  System
	Runtime Runtime
}

// Memory holds system RAM and Go heap figures in bytes.
type Memory struct {
	Total     uint64
	Available uint64
	Used      uint64
	HeapAlloc uint64
	HeapSys   uint64
}

// System describes the host. Fields the platform cannot report stay empty.
type System struct {
	Hostname string
	Platform string
	Kernel   string
	Arch     string
	CPUModel string
	Cores    int
	MHz      float64
}

// Runtime describes the busybox process.
type Runtime struct {
	GoVersion  string
	Goroutines int
	NumGC      uint32
	Uptime     time.Duration
}

// Collect gathers a report. Host figures that cannot be read are left
// empty; only a cancelled context fails the call.
func Collect(ctx context.Context) (Report, error) {
	log := logging.Get("sysinfo")
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	var r Report
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		r.Memory.Total = vm.Total
		r.Memory.Available = vm.Available
		r.Memory.Used = vm.Used
	} else {
		log.Debug().Err(err).Msg("virtual memory unavailable")
	}

	if hi, err := host.InfoWithContext(ctx); err == nil {
		r.System.Hostname = hi.Hostname
		r.System.Platform = strings.TrimSpace(hi.Platform + " " + hi.PlatformVersion)
		r.System.Kernel = hi.KernelVersion
		r.System.Arch = hi.KernelArch
	} else {
		log.Debug().Err(err).Msg("host info unavailable")
	}
	if r.System.Arch == "" {
		r.System.Arch = runtime.GOARCH
	}

	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		r.System.CPUModel = infos[0].ModelName
		r.System.MHz = infos[0].Mhz
	} else if err != nil {
		log.Debug().Err(err).Msg("cpu info unavailable")
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		r.System.Cores = n
	} else {
		r.System.Cores = runtime.NumCPU()
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	r.Memory.HeapAlloc = ms.HeapAlloc
	r.Memory.HeapSys = ms.HeapSys
	r.Runtime = Runtime{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		NumGC:      ms.NumGC,
		Uptime:     time.Since(started),
	}
	return r, ctx.Err()
}

// Write prints the report in three sections.
func (r Report) Write(w io.Writer) error {
	var b strings.Builder
	line := func(label, format string, args ...any) {
		fmt.Fprintf(&b, "%-14s"+format+"\n", append([]any{label + ":"}, args...)...)
	}

	b.WriteString("=== Memory Information ===\n")
	line("Total RAM", "%d bytes", r.Memory.Total)
	line("Free RAM", "%d bytes", r.Memory.Available)
	line("Used RAM", "%d bytes", r.Memory.Used)
	line("Heap Alloc", "%d bytes", r.Memory.HeapAlloc)
	line("Heap Sys", "%d bytes", r.Memory.HeapSys)

	b.WriteString("=== System Information ===\n")
	line("Hostname", "%s", orUnknown(r.System.Hostname))
	line("Platform", "%s", orUnknown(r.System.Platform))
	line("Kernel", "%s", orUnknown(r.System.Kernel))
	line("Chip Model", "%s", orUnknown(r.System.CPUModel))
	line("Chip Cores", "%d", r.System.Cores)
	line("CPU Freq", "%.0f MHz", r.System.MHz)
	line("Arch", "%s", r.System.Arch)

	b.WriteString("=== Runtime Information ===\n")
	line("Go Version", "%s", r.Runtime.GoVersion)
	line("Goroutines", "%d", r.Runtime.Goroutines)
	line("GC Cycles", "%d", r.Runtime.NumGC)
	line("Uptime", "%s", Uptime(r.Runtime.Uptime))

	_, err := io.WriteString(w, b.String())
	return err
}

// Uptime formats d as hours, minutes and seconds. Hours are not wrapped at
// a day.
func Uptime(d time.Duration) string {
	sec := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, sec/60%60, sec%60)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
