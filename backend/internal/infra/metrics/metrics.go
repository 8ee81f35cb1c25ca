package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registerOnce           sync.Once
	agentCycles            *prometheus.CounterVec
	producerRuns           *prometheus.CounterVec
	actionsLogged          *prometheus.CounterVec
	actionAppendDuration   prometheus.Histogram
	defaultDurationBuckets = prometheus.DefBuckets
)

const (
	namespaceMetrics = "guerrilla"
)

// MustRegister 初始化 Prometheus 指标并注册 Go 运行时采样器，需在应用启动阶段调用一次。
func MustRegister() {
	registerOnce.Do(func() {
		agentCycles = registerCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "agent",
					Name:      "cycles_total",
					Help:      "营销周期的执行次数，按执行状态统计。",
				},
				[]string{"status"},
			),
		)
		producerRuns = registerCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "agent",
					Name:      "producer_runs_total",
					Help:      "各动作生成器的执行次数，按生成器名称与结果拆分。",
				},
				[]string{"producer", "status"},
			),
		)
		actionsLogged = registerCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "log",
					Name:      "actions_total",
					Help:      "写入行为日志的记录数量，按动作类型分类。",
				},
				[]string{"action_type"},
			),
		)
		actionAppendDuration = registerHistogram(
			prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: namespaceMetrics,
					Subsystem: "log",
					Name:      "append_duration_seconds",
					Help:      "行为日志落库耗时。",
					Buckets:   defaultDurationBuckets,
				},
			),
		)

		registerRuntimeCollectors()
	})
}

// ObserveCycle 记录一次营销周期的执行结果。
func ObserveCycle(status string) {
	if agentCycles == nil {
		return
	}
	agentCycles.WithLabelValues(normalizeLabel(status, "unknown")).Inc()
}

// ObserveProducerRun 记录单个动作生成器的执行结果。
func ObserveProducerRun(producer, status string) {
	if producerRuns == nil {
		return
	}
	producerRuns.WithLabelValues(
		normalizeLabel(producer, "unspecified"),
		normalizeLabel(status, "unknown"),
	).Inc()
}

// ObserveActionAppend 记录一条日志写入的类型与耗时。
func ObserveActionAppend(actionType string, duration time.Duration) {
	if actionsLogged != nil {
		actionsLogged.WithLabelValues(normalizeLabel(actionType, "unknown")).Inc()
	}
	if actionAppendDuration != nil {
		actionAppendDuration.Observe(duration.Seconds())
	}
}

// registerCounterVec 注册计数器，重复注册时复用已存在的实例。
func registerCounterVec(vec *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return vec
}

// registerHistogram 注册直方图，重复注册时复用已存在的实例。
func registerHistogram(hist prometheus.Histogram) prometheus.Histogram {
	if err := prometheus.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing
			}
		}
	}
	return hist
}

// registerRuntimeCollectors 注册 Go 运行时与进程采样器，忽略重复注册错误。
func registerRuntimeCollectors() {
	_ = prometheus.Register(collectors.NewGoCollector())
	_ = prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// normalizeLabel 统一标签格式，空值回退到给定默认值。
func normalizeLabel(raw, fallback string) string {
	trimmed := strings.TrimSpace(strings.ToLower(raw))
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
