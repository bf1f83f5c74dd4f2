package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ConsoleLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aiw",
			Subsystem: "console",
			Name:      "latency_seconds",
			Help:      "Latency of console endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	ConsoleErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aiw",
			Subsystem: "console",
			Name:      "errors_total",
			Help:      "Errors by console endpoint",
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ConsoleLatency, ConsoleErrors)
	})
}
