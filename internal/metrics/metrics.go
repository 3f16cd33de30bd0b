// Package metrics 提供Prometheus监控指标
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "shopeval"

// Metrics 评估引擎指标集合
type Metrics struct {
	registry *prometheus.Registry

	ruleEvaluations *prometheus.CounterVec
	ruleErrors      *prometheus.CounterVec
	factorFallbacks *prometheus.CounterVec
	shopEvaluations *prometheus.CounterVec
	batchDuration   prometheus.Histogram
	batchShops      prometheus.Histogram
	configRefresh   *prometheus.CounterVec
	configRules     prometheus.Gauge
	configFactors   prometheus.Gauge
	cacheLookups    *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Default 获取全局指标集合
func Default() *Metrics {
	once.Do(func() {
		defaultMetrics = New()
		defaultMetrics.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
	return defaultMetrics
}

// New 创建独立注册表的指标集合
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		// 规则评估计数
		ruleEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_evaluations_total",
			Help:      "资格规则评估次数",
		}, []string{"category", "outcome"}),

		// 规则内部错误（按放行处理）
		ruleErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_errors_total",
			Help:      "规则评估内部错误次数",
		}, []string{"category", "code"}),

		factorFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "factor_fallbacks_total",
			Help:      "工时系数缺失使用默认值次数",
		}, []string{"factor_type", "work_type"}),

		shopEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shop_evaluations_total",
			Help:      "维修厂评估次数",
		}, []string{"eligible"}),

		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "单车多厂批量评估耗时",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),

		batchShops: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_shops",
			Help:      "单次批量评估的维修厂数量",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),

		configRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_refresh_total",
			Help:      "配置快照刷新次数",
		}, []string{"status"}),

		configRules: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "config_rules",
			Help:      "当前快照中的规则数量",
		}),

		configFactors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "config_factors",
			Help:      "当前快照中的生效系数数量",
		}),

		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_cache_lookups_total",
			Help:      "配置缓存查询次数",
		}, []string{"kind", "result"}),
	}

	m.registry.MustRegister(
		m.ruleEvaluations,
		m.ruleErrors,
		m.factorFallbacks,
		m.shopEvaluations,
		m.batchDuration,
		m.batchShops,
		m.configRefresh,
		m.configRules,
		m.configFactors,
		m.cacheLookups,
	)

	return m
}

// Gatherer 返回注册表
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// RecordRuleEvaluation 记录规则评估
func (m *Metrics) RecordRuleEvaluation(category, outcome string) {
	m.ruleEvaluations.WithLabelValues(category, outcome).Inc()
}

// RecordRuleError 记录规则内部错误
func (m *Metrics) RecordRuleError(category, code string) {
	m.ruleErrors.WithLabelValues(category, code).Inc()
}

// RecordFactorFallback 记录系数回退
func (m *Metrics) RecordFactorFallback(factorType, workType string) {
	m.factorFallbacks.WithLabelValues(factorType, workType).Inc()
}

// RecordShopEvaluation 记录维修厂评估
func (m *Metrics) RecordShopEvaluation(eligible bool) {
	label := "false"
	if eligible {
		label = "true"
	}
	m.shopEvaluations.WithLabelValues(label).Inc()
}

// RecordBatch 记录批量评估
func (m *Metrics) RecordBatch(shops int, duration time.Duration) {
	m.batchDuration.Observe(duration.Seconds())
	m.batchShops.Observe(float64(shops))
}

// RecordConfigRefresh 记录配置刷新
func (m *Metrics) RecordConfigRefresh(success bool, rules, factors int) {
	if !success {
		m.configRefresh.WithLabelValues("error").Inc()
		return
	}
	m.configRefresh.WithLabelValues("success").Inc()
	m.configRules.Set(float64(rules))
	m.configFactors.Set(float64(factors))
}

// RecordCacheLookup 记录配置缓存查询（hit/miss/error）
func (m *Metrics) RecordCacheLookup(kind, result string) {
	m.cacheLookups.WithLabelValues(kind, result).Inc()
}

// WriteTextfile 以文本格式写出全部指标（供 node_exporter textfile collector 采集）
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
