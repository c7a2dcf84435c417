package diagnostics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{42 * time.Second, "42с"},
		{3*time.Minute + 5*time.Second, "3м 5с"},
		{2*time.Hour + 1*time.Minute, "2ч 1м 0с"},
		{26*time.Hour + 30*time.Second, "1д 2ч 0м 30с"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUptime(tt.in))
	}
}

func TestSnapshot_String(t *testing.T) {
	s := Snapshot{
		Uptime:     90 * time.Second,
		HeapAlloc:  2 * 1000 * 1000,
		Sys:        10 * 1000 * 1000,
		NumCPU:     4,
		Goroutines: 7,
		Counts:     map[string]int{"wood": 12345, "bark": 3},
	}
	out := s.String()
	assert.Contains(t, out, "uptime=1м 30с")
	assert.Contains(t, out, "heap=2.0 MB")
	assert.Contains(t, out, "sys=10 MB")
	assert.Contains(t, out, "bark=3 wood=12,345", "счётчики отсортированы по имени")
	assert.NotContains(t, out, "rss=", "нулевой RSS не выводится")
}

func TestMonitor_Collect(t *testing.T) {
	m := NewMonitor()
	snap := m.Collect(map[string]int{"sap": 1})

	assert.Greater(t, snap.HeapAlloc, uint64(0))
	assert.Greater(t, snap.NumCPU, 0)
	assert.Greater(t, snap.Goroutines, 0)
	assert.Equal(t, 1, snap.Counts["sap"])
	assert.NotEmpty(t, m.Uptime())
}
