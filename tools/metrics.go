package tools

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	toolExecutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "modelgate_tool_execution_duration_seconds",
		Help:    "Tool execution duration in seconds",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}, []string{"tool", "status"})

	toolExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modelgate_tool_executions_total",
		Help: "Total number of tool executions",
	}, []string{"tool", "status"})
)

func recordExecution(tool, status string, duration time.Duration) {
	toolExecutionDuration.WithLabelValues(tool, status).Observe(duration.Seconds())
	toolExecutionsTotal.WithLabelValues(tool, status).Inc()
}
