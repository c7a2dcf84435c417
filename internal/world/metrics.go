package world

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — Prometheus-метрики мира. Все методы безопасны для nil-получателя:
// системы работают и без подключённых метрик.
type Metrics struct {
	spawned     *prometheus.CounterVec
	destroyed   *prometheus.CounterVec
	transitions *prometheus.CounterVec
	collapsed   prometheus.Counter
	violations  *prometheus.CounterVec
	damage      prometheus.Counter
	occupancy   prometheus.Gauge
	generation  prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		spawned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rootgrove",
			Subsystem: "world",
			Name:      "blocks_spawned_total",
			Help:      "Созданные блоки корней по виду ресурса.",
		}, []string{"resource"}),
		destroyed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rootgrove",
			Subsystem: "world",
			Name:      "blocks_destroyed_total",
			Help:      "Разрушенные блоки корней по виду ресурса.",
		}, []string{"resource"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rootgrove",
			Subsystem: "worldgen",
			Name:      "resource_transitions_total",
			Help:      "Переходы вида ресурса при росте корней.",
		}, []string{"from", "to"}),
		collapsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rootgrove",
			Subsystem: "world",
			Name:      "collapse_moves_total",
			Help:      "Перемещения блоков на клетку вниз.",
		}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rootgrove",
			Subsystem: "world",
			Name:      "invariant_violations_total",
			Help:      "Обнаруженные нарушения инвариантов карты занятости.",
		}, []string{"reason"}),
		damage: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rootgrove",
			Subsystem: "world",
			Name:      "damage_events_total",
			Help:      "Применённые события урона.",
		}),
		occupancy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rootgrove",
			Subsystem: "world",
			Name:      "occupied_cells",
			Help:      "Число занятых клеток в карте.",
		}),
		generation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rootgrove",
			Subsystem: "worldgen",
			Name:      "generation_seconds",
			Help:      "Длительность генерации мира.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	reg.MustRegister(m.spawned, m.destroyed, m.transitions, m.collapsed,
		m.violations, m.damage, m.occupancy, m.generation)
	return m
}

func (m *Metrics) SetOccupancy(n int) {
	if m == nil {
		return
	}
	m.occupancy.Set(float64(n))
}

func (m *Metrics) InvariantViolation(reason string) {
	if m == nil {
		return
	}
	m.violations.WithLabelValues(reason).Inc()
}

func (m *Metrics) BlockSpawned(kind ResourceKind) {
	if m == nil {
		return
	}
	m.spawned.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) BlockDestroyed(kind ResourceKind) {
	if m == nil {
		return
	}
	m.destroyed.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) Transition(from, to ResourceKind) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

func (m *Metrics) CollapseMoves(n int) {
	if m == nil || n == 0 {
		return
	}
	m.collapsed.Add(float64(n))
}

func (m *Metrics) Damage() {
	if m == nil {
		return
	}
	m.damage.Inc()
}

// ObserveGeneration записывает длительность генерации
func (m *Metrics) ObserveGeneration(d time.Duration) {
	if m == nil {
		return
	}
	m.generation.Observe(d.Seconds())
}
