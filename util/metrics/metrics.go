// Package metrics defines the prometheus collectors for the dispatch server.
// All collectors are registered on the default registry via promauto; the
// server exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesReceivedTotal counts frames accepted from camera sessions,
	// labeled by camera and dispatch mode ("single" or "fanout").
	FramesReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moe_frames_received_total",
			Help: "Total number of frames received from camera sessions",
		},
		[]string{"camera", "mode"},
	)

	// FramesDroppedTotal counts jobs rejected because a worker queue was full.
	FramesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moe_frames_dropped_total",
			Help: "Total number of jobs rejected by full expert worker queues",
		},
		[]string{"expert"},
	)

	// InferenceErrorsTotal counts jobs whose wrapped capability returned an error.
	InferenceErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moe_inference_errors_total",
			Help: "Total number of expert inference errors",
		},
		[]string{"expert"},
	)

	// FramesProcessedTotal counts jobs completed by expert workers.
	FramesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moe_frames_processed_total",
			Help: "Total number of jobs processed by expert workers",
		},
		[]string{"expert"},
	)

	// WorkerQueueDepth tracks the live queue length of each expert worker.
	WorkerQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moe_worker_queue_depth",
			Help: "Current number of jobs queued per expert worker",
		},
		[]string{"expert"},
	)

	// ActiveSessions tracks the number of registered camera sessions.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moe_active_sessions",
			Help: "Number of active camera sessions",
		},
	)

	// AggregateTimeoutsTotal counts pending aggregates completed by timeout
	// rather than by all experts reporting.
	AggregateTimeoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moe_aggregate_timeouts_total",
			Help: "Total number of aggregates completed with partial results on timeout",
		},
		[]string{"camera"},
	)

	// DeliveryDropsTotal counts results dropped at delivery time because the
	// session's outbound channel was full or the session was gone.
	DeliveryDropsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moe_delivery_drops_total",
			Help: "Total number of results dropped at delivery time",
		},
		[]string{"camera"},
	)

	// StraggleResultsTotal counts late expert results discarded because their
	// aggregate was already completed, timed out, or cancelled.
	StraggleResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moe_straggler_results_total",
			Help: "Total number of late expert results discarded by the aggregator",
		},
		[]string{"expert"},
	)
)

// RecordFrameReceived increments the received-frame counter for a camera.
func RecordFrameReceived(camera, mode string) {
	FramesReceivedTotal.WithLabelValues(camera, mode).Inc()
}

// RecordFrameDropped increments the dropped-job counter for an expert.
func RecordFrameDropped(expert string) {
	FramesDroppedTotal.WithLabelValues(expert).Inc()
}

// RecordInferenceError increments the inference-error counter for an expert.
func RecordInferenceError(expert string) {
	InferenceErrorsTotal.WithLabelValues(expert).Inc()
}

// RecordFrameProcessed increments the processed-job counter for an expert.
func RecordFrameProcessed(expert string) {
	FramesProcessedTotal.WithLabelValues(expert).Inc()
}

// SetWorkerQueueDepth sets the live queue depth gauge for an expert.
func SetWorkerQueueDepth(expert string, depth int) {
	WorkerQueueDepth.WithLabelValues(expert).Set(float64(depth))
}

// SetActiveSessions sets the session count gauge.
func SetActiveSessions(count int) {
	ActiveSessions.Set(float64(count))
}

// RecordAggregateTimeout increments the aggregate-timeout counter for a camera.
func RecordAggregateTimeout(camera string) {
	AggregateTimeoutsTotal.WithLabelValues(camera).Inc()
}

// RecordDeliveryDrop increments the delivery-drop counter for a camera.
func RecordDeliveryDrop(camera string) {
	DeliveryDropsTotal.WithLabelValues(camera).Inc()
}

// RecordStragglerResult increments the discarded-straggler counter for an expert.
func RecordStragglerResult(expert string) {
	StraggleResultsTotal.WithLabelValues(expert).Inc()
}
