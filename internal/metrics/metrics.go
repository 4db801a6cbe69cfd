package metrics

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/grussorusso/stepflow/internal/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Enabled bool
var registry = prometheus.NewRegistry()

var (
	ExecutionsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stepflow_executions_started_total",
		Help: "The total number of executions started.",
	})
	ExecutionsCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stepflow_executions_completed_total",
		Help: "The total number of executions completed, by final status.",
	}, []string{"status"})
	ExecutionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "stepflow_execution_duration_seconds",
		Help:    "Wall-clock duration of completed executions.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})
	StateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stepflow_state_transitions_total",
		Help: "The total number of state transitions, by state type.",
	}, []string{"type"})
)

func RecordExecutionStarted() {
	if Enabled {
		ExecutionsStarted.Inc()
	}
}

func RecordExecutionCompleted(status string, duration time.Duration) {
	if Enabled {
		ExecutionsCompleted.WithLabelValues(status).Inc()
		ExecutionDuration.Observe(duration.Seconds())
	}
}

func RecordStateTransition(stateType string) {
	if Enabled {
		StateTransitions.WithLabelValues(stateType).Inc()
	}
}

func Init() {
	if config.GetBool(config.METRICS_ENABLED, false) {
		log.Println("Metrics enabled.")
		Enabled = true
	} else {
		log.Println("Metrics disabled.")
		Enabled = false
		return
	}

	registry.MustRegister(ExecutionsStarted, ExecutionsCompleted, ExecutionDuration, StateTransitions)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true})
	http.Handle("/metrics", handler)
	port := config.GetInt(config.METRICS_PORT, 2112)
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), nil); err != nil {
			log.Printf("Metrics listener failed: %v", err)
		}
	}()
}
