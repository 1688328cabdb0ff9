package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	GateLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tradegate",
			Subsystem: "gate",
			Name:      "latency_seconds",
			Help:      "Latency of gate endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	GateErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradegate",
			Subsystem: "gate",
			Name:      "errors_total",
			Help:      "Errors by gate endpoint",
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(GateLatency, GateErrors)
	})
}
