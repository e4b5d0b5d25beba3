package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor Prometheus监控指标收集器，所有指标按 symbol 打标签
type Monitor struct {
	registry *prometheus.Registry

	// 指标状态
	score         *prometheus.GaugeVec
	running       *prometheus.GaugeVec
	spread        *prometheus.GaugeVec
	updates       *prometheus.CounterVec
	depletions    *prometheus.CounterVec // symbol, side
	resolutions   *prometheus.CounterVec // symbol, outcome
	reversals     *prometheus.CounterVec
	continuations *prometheus.CounterVec
	recoveryTime  *prometheus.HistogramVec

	// 行情源
	feedReconnects *prometheus.CounterVec
	feedErrors     *prometheus.CounterVec
}

// Config 监控配置
type Config struct {
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Namespace: "mr",
		Subsystem: "resilience",
	}
}

// New 创建新的Monitor实例
func New(cfg Config) *Monitor {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	gauge := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	}
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	}

	return &Monitor{
		registry:      reg,
		score:         gauge("score", "最近一次恢复评分 [0,1]", "symbol"),
		running:       gauge("episode_running", "是否处于耗尽监控中(0/1)", "symbol"),
		spread:        gauge("spread", "当前价差", "symbol"),
		updates:       counter("book_updates_total", "处理的订单簿快照数", "symbol"),
		depletions:    counter("depletions_total", "确认的深度耗尽次数", "symbol", "side"),
		resolutions:   counter("resolutions_total", "耗尽事件结束次数", "symbol", "outcome"),
		reversals:     counter("strong_reversals_total", "强恢复（同侧）次数", "symbol"),
		continuations: counter("depletion_continuing_total", "弱恢复（对侧）次数", "symbol"),
		recoveryTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "recovery_seconds",
			Help:      "恢复耗时分布（秒）",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"symbol"}),
		feedReconnects: counter("feed_reconnects_total", "行情源重连次数", "stream"),
		feedErrors:     counter("feed_errors_total", "行情源解析/读取错误", "stream"),
	}
}

func (m *Monitor) RecordUpdate(symbol string, spread float64, hasSpread bool) {
	m.updates.WithLabelValues(symbol).Inc()
	if hasSpread {
		m.spread.WithLabelValues(symbol).Set(spread)
	}
}

func (m *Monitor) RecordDepletion(symbol, side string) {
	m.depletions.WithLabelValues(symbol, side).Inc()
	m.running.WithLabelValues(symbol).Set(1)
}

// RecordResolution 记录一次事件结束；超时时 score 为 0
func (m *Monitor) RecordResolution(symbol, outcome string, score float64, strong, continuing bool) {
	m.resolutions.WithLabelValues(symbol, outcome).Inc()
	m.running.WithLabelValues(symbol).Set(0)
	m.score.WithLabelValues(symbol).Set(score)
	if strong {
		m.reversals.WithLabelValues(symbol).Inc()
	}
	if continuing {
		m.continuations.WithLabelValues(symbol).Inc()
	}
}

// RecordRecoveryTime 只用于真正恢复的事件，超时不计入
func (m *Monitor) RecordRecoveryTime(symbol string, seconds float64) {
	m.recoveryTime.WithLabelValues(symbol).Observe(seconds)
}

// ResetSymbol 指标器重置后清零状态类指标
func (m *Monitor) ResetSymbol(symbol string) {
	m.score.WithLabelValues(symbol).Set(0)
	m.running.WithLabelValues(symbol).Set(0)
}

func (m *Monitor) RecordFeedReconnect(stream string) {
	m.feedReconnects.WithLabelValues(stream).Inc()
}

func (m *Monitor) RecordFeedError(stream string) {
	m.feedErrors.WithLabelValues(stream).Inc()
}

// Handler 返回HTTP handler用于暴露指标
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 返回prometheus registry
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}
