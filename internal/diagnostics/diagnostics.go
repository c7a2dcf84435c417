// Package diagnostics собирает сведения о процессе для отчётов безголового запуска.
package diagnostics

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Monitor отслеживает время работы и ресурсы процесса
type Monitor struct {
	StartTime time.Time
}

// NewMonitor создает монитор, время старта — сейчас
func NewMonitor() *Monitor {
	return &Monitor{StartTime: time.Now()}
}

// Snapshot — состояние процесса и мира на момент отчёта
type Snapshot struct {
	Uptime      time.Duration
	HeapAlloc   uint64
	Sys         uint64
	RSS         uint64 // 0, если ОС не отдала данные процесса
	SystemTotal uint64
	CPUPercent  float64
	NumCPU      int
	Goroutines  int
	NumGC       uint32
	Counts      map[string]int // Блоки по видам ресурса
}

// Uptime возвращает время работы в виде "1д 2ч 3м 4с"
func (m *Monitor) Uptime() string {
	return FormatUptime(time.Since(m.StartTime))
}

// FormatUptime форматирует длительность, опуская нулевые старшие части
func FormatUptime(uptime time.Duration) string {
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}

// CPUUsage возвращает использование CPU процессом в процентах
func (m *Monitor) CPUUsage() (float64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		// Если не удалось получить метрику процесса, берём системную
		cpuPercents, err := cpu.Percent(100*time.Millisecond, false)
		if err != nil || len(cpuPercents) == 0 {
			return 0, err
		}
		return cpuPercents[0], nil
	}
	return cpuPercent, nil
}

// Collect снимает показания. Ошибки gopsutil не фатальны: поле остаётся нулевым.
func (m *Monitor) Collect(counts map[string]int) Snapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	snap := Snapshot{
		Uptime:     time.Since(m.StartTime),
		HeapAlloc:  ms.HeapAlloc,
		Sys:        ms.Sys,
		NumCPU:     runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
		NumGC:      ms.NumGC,
		Counts:     counts,
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := proc.MemoryInfo(); err == nil {
			snap.RSS = info.RSS
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.SystemTotal = vm.Total
	}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		snap.NumCPU = n
	}
	if pct, err := m.CPUUsage(); err == nil {
		snap.CPUPercent = pct
	}
	return snap
}

// String форматирует отчёт одной строкой для лога
func (s Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "uptime=%s heap=%s sys=%s", FormatUptime(s.Uptime),
		humanize.Bytes(s.HeapAlloc), humanize.Bytes(s.Sys))
	if s.RSS > 0 {
		fmt.Fprintf(&b, " rss=%s", humanize.Bytes(s.RSS))
	}
	if s.SystemTotal > 0 {
		fmt.Fprintf(&b, " ram=%s", humanize.Bytes(s.SystemTotal))
	}
	fmt.Fprintf(&b, " cpu=%.1f%% cores=%d goroutines=%d gc=%d",
		s.CPUPercent, s.NumCPU, s.Goroutines, s.NumGC)

	names := make([]string, 0, len(s.Counts))
	for name := range s.Counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%s", name, humanize.Comma(int64(s.Counts[name])))
	}
	return b.String()
}
