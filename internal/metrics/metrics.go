// internal/metrics/metrics.go
//
// Package metrics 以 Prometheus collector 記錄每次帳戶操作的結果與等鎖時間。
// 本模擬不對外開放網路，因此不提供 /metrics 端點；
// 由 Summary() 直接從 registry Gather 出計數，附在階段報表中。
package metrics

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "banksim"

// Metrics 實作 bank.Recorder。
type Metrics struct {
	reg        *prometheus.Registry
	operations *prometheus.CounterVec
	lockWait   *prometheus.HistogramVec
}

// New 建立並註冊所有 collector 到一個獨立的 registry（不使用全域 DefaultRegisterer）。
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Account operations by kind and outcome.",
		}, []string{"op", "outcome"}),
		lockWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting to acquire an account lock.",
			Buckets:   []float64{.0001, .001, .01, .05, .1, .25, .5, 1, 5},
		}, []string{"op"}),
	}
	m.reg.MustRegister(m.operations, m.lockWait)
	return m
}

// ObserveOperation 累加一次操作結果。
func (m *Metrics) ObserveOperation(op, outcome string) {
	m.operations.WithLabelValues(op, outcome).Inc()
}

// ObserveLockWait 記錄一次等鎖時間。
func (m *Metrics) ObserveLockWait(op string, d time.Duration) {
	m.lockWait.WithLabelValues(op).Observe(d.Seconds())
}

// OutcomeCount 為單一 (op, outcome) 組合的累計次數。
type OutcomeCount struct {
	Op      string `json:"op"`
	Outcome string `json:"outcome"`
	Count   int    `json:"count"`
}

// Summary 從 registry 取出 operations_total，依 op、outcome 排序回傳。
func (m *Metrics) Summary() ([]OutcomeCount, error) {
	families, err := m.reg.Gather()
	if err != nil {
		return nil, err
	}
	var out []OutcomeCount
	for _, mf := range families {
		if mf.GetName() != namespace+"_operations_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			oc := OutcomeCount{Count: int(metric.GetCounter().GetValue())}
			for _, lp := range metric.GetLabel() {
				switch lp.GetName() {
				case "op":
					oc.Op = lp.GetValue()
				case "outcome":
					oc.Outcome = lp.GetValue()
				}
			}
			out = append(out, oc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Op != out[j].Op {
			return out[i].Op < out[j].Op
		}
		return out[i].Outcome < out[j].Outcome
	})
	return out, nil
}
