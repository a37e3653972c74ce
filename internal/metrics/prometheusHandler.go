package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "control_http_requests_total",
	Help: "Total number of control api requests labelled by path and status",
}, []string{"path", "status"})

var workflowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "workflows_total",
	Help: "Finished upload batches and queries labelled by outcome",
}, []string{"operation", "outcome"})

var rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "workflows_rejected_total",
	Help: "Operations refused by the controller labelled by reason",
}, []string{"operation", "reason"})

var uploadedFiles = promauto.NewCounter(prometheus.CounterOpts{
	Name: "uploaded_files_total",
	Help: "Files the backend confirmed",
})

var busyGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "session_busy",
	Help: "1 while an upload or query is in flight",
})

var transcriptTurns = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "transcript_turns",
	Help: "Number of turns currently in the transcript",
})

var workflowDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "workflow_duration_seconds",
	Help:    "Time from busy to idle for one operation.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 60, 120},
}, []string{"operation"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of backend calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
}, []string{"service"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func SetBusy(busy bool) {
	if busy {
		busyGauge.Set(1)
		return
	}
	busyGauge.Set(0)
}

func SetTranscriptTurns(n int) {
	transcriptTurns.Set(float64(n))
}

func IncrementUploadedFiles() {
	uploadedFiles.Inc()
}

func CaptureRejected(operation string, reason string) {
	rejectedTotal.WithLabelValues(operation, reason).Inc()
}

func CaptureWorkflow(operation string, outcome string, timeElapsed time.Duration) {
	workflowsTotal.WithLabelValues(operation, outcome).Inc()
	workflowDuration.WithLabelValues(operation).Observe(timeElapsed.Seconds())
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
