package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики торгового ядра
// ============================================================
//
// Использование:
// - Grafana дашборды для визуализации цикла
// - Alertmanager для уведомлений о потоке ошибок
// - Анализ поведения в production

// ============ Метрики цикла ============

// CycleDuration - длительность полного торгового цикла
var CycleDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "cryptoalpha",
		Subsystem: "trading",
		Name:      "cycle_duration_seconds",
		Help:      "Duration of a full trading cycle in seconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	},
)

// CyclesTotal - количество циклов по результату
var CyclesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cryptoalpha",
		Subsystem: "trading",
		Name:      "cycles_total",
		Help:      "Total number of trading cycles",
	},
	[]string{"result"}, // completed, skipped, failed
)

// ============ Метрики диспетчеризации сигналов ============

// SignalsDispatched - исполненные сигналы
var SignalsDispatched = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cryptoalpha",
		Subsystem: "trading",
		Name:      "signals_dispatched_total",
		Help:      "Total number of dispatched signals",
	},
	[]string{"outcome"}, // opened, denied, skipped, failed
)

// SignalsGateSkipped - сигналы, отсеянные диспетчером
var SignalsGateSkipped = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cryptoalpha",
		Subsystem: "trading",
		Name:      "signals_gate_skipped_total",
		Help:      "Signals held back by the dispatch gate",
	},
	[]string{"reason"}, // open_position, cooldown
)

// ============ Метрики исполнения ============

// OrderExecutionLatency - время исполнения ордера на бирже
var OrderExecutionLatency = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "cryptoalpha",
		Subsystem: "exchange",
		Name:      "order_execution_latency_ms",
		Help:      "Time to execute order on exchange in milliseconds",
		Buckets:   []float64{50, 100, 200, 300, 500, 1000, 2000, 5000},
	},
	[]string{"side"},
)

// OrdersTotal - количество ордеров по стороне и результату
var OrdersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cryptoalpha",
		Subsystem: "exchange",
		Name:      "orders_total",
		Help:      "Total number of orders placed",
	},
	[]string{"side", "result"}, // result: success, failed
)

// ============ Метрики позиций ============

// OpenPositions - текущее количество открытых позиций
var OpenPositions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "cryptoalpha",
		Subsystem: "trading",
		Name:      "open_positions",
		Help:      "Current number of open positions",
	},
)

// PositionsClosed - закрытые позиции по причине выхода
var PositionsClosed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cryptoalpha",
		Subsystem: "trading",
		Name:      "positions_closed_total",
		Help:      "Total number of closed positions by exit reason",
	},
	[]string{"reason"}, // stop_loss, take_profit
)

// RealizedPnlTotal - суммарный реализованный PNL в котируемой валюте.
// Gauge, а не Counter: PNL бывает отрицательным.
var RealizedPnlTotal = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "cryptoalpha",
		Subsystem: "trading",
		Name:      "realized_pnl_total",
		Help:      "Total realized PnL in quote currency",
	},
)

// ============ Метрики сборщика цен ============

// SnapshotAssets - размер последнего ценового снапшота
var SnapshotAssets = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "cryptoalpha",
		Subsystem: "collector",
		Name:      "snapshot_assets",
		Help:      "Assets in the latest price snapshot by status",
	},
	[]string{"status"}, // resolved, missing
)

// ============ Вспомогательные функции ============

// RecordDispatch записывает результат диспетчеризации сигнала
func RecordDispatch(outcome string) {
	SignalsDispatched.WithLabelValues(outcome).Inc()
}

// RecordGateSkip записывает причину удержания сигнала диспетчером
func RecordGateSkip(reason string) {
	SignalsGateSkipped.WithLabelValues(reason).Inc()
}

// RecordOrder записывает исполненный или неудавшийся ордер
func RecordOrder(side string, success bool, latencyMs float64) {
	result := "failed"
	if success {
		result = "success"
	}
	OrdersTotal.WithLabelValues(side, result).Inc()
	if success {
		OrderExecutionLatency.WithLabelValues(side).Observe(latencyMs)
	}
}

// RecordPositionClose записывает закрытие позиции
func RecordPositionClose(reason string, pnl float64) {
	PositionsClosed.WithLabelValues(reason).Inc()
	if pnl != 0 {
		RealizedPnlTotal.Add(pnl)
	}
}

// RecordSnapshot записывает покрытие ценового снапшота
func RecordSnapshot(resolved, missing int) {
	SnapshotAssets.WithLabelValues("resolved").Set(float64(resolved))
	SnapshotAssets.WithLabelValues("missing").Set(float64(missing))
}
