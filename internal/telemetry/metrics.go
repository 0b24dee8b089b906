package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — Prometheus метрики клиента.
//
// Все методы безопасны для nil *Metrics: компоненты, которым метрики
// не переданы, просто ничего не записывают.
type Metrics struct {
	engineCalls      *prometheus.CounterVec
	engineLatency    *prometheus.HistogramVec
	transfersStarted prometheus.Counter
	schedules        *prometheus.CounterVec
	stateOverrides   prometheus.Counter
}

// NewMetrics регистрирует метрики в reg.
// Если reg == nil, используется prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		engineCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "money_transfer_engine_calls_total",
			Help: "Total engine RPC calls by operation and result",
		}, []string{"op", "result"}),
		engineLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "money_transfer_engine_call_duration_seconds",
			Help:    "Engine RPC latency by operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		transfersStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "money_transfer_transfers_started_total",
			Help: "Transfers accepted by the engine",
		}),
		schedules: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "money_transfer_schedules_total",
			Help: "Schedule creation attempts by result",
		}, []string{"result"}),
		stateOverrides: factory.NewCounter(prometheus.CounterOpts{
			Name: "money_transfer_state_failed_overrides_total",
			Help: "Queried states whose workflowStatus was overridden to FAILED",
		}),
	}
}

// ObserveEngineCall записывает один вызов движка.
func (m *Metrics) ObserveEngineCall(op, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.engineCalls.WithLabelValues(op, result).Inc()
	m.engineLatency.WithLabelValues(op).Observe(d.Seconds())
}

// TransferStarted увеличивает счётчик запущенных переводов.
func (m *Metrics) TransferStarted() {
	if m == nil {
		return
	}
	m.transfersStarted.Inc()
}

// ScheduleCreated записывает результат создания schedule ("ok" или фаза ошибки).
func (m *Metrics) ScheduleCreated(result string) {
	if m == nil {
		return
	}
	m.schedules.WithLabelValues(result).Inc()
}

// StateOverridden увеличивает счётчик перезаписей workflowStatus.
func (m *Metrics) StateOverridden() {
	if m == nil {
		return
	}
	m.stateOverrides.Inc()
}
