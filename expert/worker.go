package expert

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Mentat-Vision/moe/util/logger"
	"github.com/Mentat-Vision/moe/util/metrics"
)

// DefaultQueueCapacity bounds a worker's job queue when the config does not
// override it. A slow worker sheds load from the newest frames once full.
const DefaultQueueCapacity = 100

// WorkerStats is a snapshot of one worker's counters. Mutated only by the
// worker's own loop; read by the stats publisher.
type WorkerStats struct {
	FramesProcessed uint64  `json:"total_frames"`
	QueueDepth      int     `json:"queue_size"`
	FPS             float64 `json:"fps"`
}

// Worker wraps one inference capability behind a bounded queue and a single
// consumer goroutine.
type Worker struct {
	name       string
	capability Capability
	jobs       chan *Job
	logger     *logger.Logger

	framesProcessed atomic.Uint64
	startTime       time.Time
	started         atomic.Bool
}

// NewWorker creates a worker for the named expert. queueCapacity <= 0 uses
// DefaultQueueCapacity.
func NewWorker(name string, capability Capability, queueCapacity int) *Worker {
	if queueCapacity <= 0 {
		queueCapacity = DefaultQueueCapacity
	}
	return &Worker{
		name:       name,
		capability: capability,
		jobs:       make(chan *Job, queueCapacity),
		logger:     logger.NewLogger(fmt.Sprintf("Worker(%s)", name)),
	}
}

// Name returns the expert name.
func (w *Worker) Name() string {
	return w.name
}

// Start initializes the wrapped capability and launches the processing loop.
// An initialization error is returned to the caller; the loop is not started.
func (w *Worker) Start(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("worker %s already started", w.name)
	}

	if err := w.capability.Initialize(ctx); err != nil {
		w.started.Store(false)
		return fmt.Errorf("failed to initialize %s: %w", w.name, err)
	}

	w.startTime = time.Now()
	go w.loop(ctx)

	w.logger.Infof("Worker started (queue capacity %d)", cap(w.jobs))
	return nil
}

// Submit offers a job to the worker without blocking. If the queue is full
// the job is rejected and the caller is told so; the worker never evicts
// older queued jobs to make room.
func (w *Worker) Submit(job *Job) bool {
	select {
	case w.jobs <- job:
		metrics.SetWorkerQueueDepth(w.name, len(w.jobs))
		return true
	default:
		w.logger.Warnf("Queue full, dropping frame for camera %s", job.CameraID)
		metrics.RecordFrameDropped(w.name)
		return false
	}
}

// Stats returns a snapshot of the worker's counters. FPS is computed over
// the worker's whole lifetime, matching the dashboard's health display.
func (w *Worker) Stats() WorkerStats {
	processed := w.framesProcessed.Load()
	var fps float64
	if w.started.Load() {
		if elapsed := time.Since(w.startTime).Seconds(); elapsed > 0 {
			fps = float64(processed) / elapsed
		}
	}
	return WorkerStats{
		FramesProcessed: processed,
		QueueDepth:      len(w.jobs),
		FPS:             fps,
	}
}

// loop is the single consumer of the worker's queue.
func (w *Worker) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Worker loop stopped: %v", ctx.Err())
			return
		case job := <-w.jobs:
			w.process(ctx, job)
			metrics.SetWorkerQueueDepth(w.name, len(w.jobs))
		}
	}
}

// process runs one job through the capability and delivers the result. An
// inference error becomes a Result with Err set; it never terminates the loop.
func (w *Worker) process(ctx context.Context, job *Job) {
	result := Result{
		Expert:   w.name,
		CameraID: job.CameraID,
		Sequence: job.Frame.Sequence,
	}

	payload, err := w.capability.Process(ctx, job)
	if err != nil {
		w.logger.Errorf("Inference error for camera %s: %v", job.CameraID, err)
		metrics.RecordInferenceError(w.name)
		result.Err = err.Error()
	} else {
		result.Payload = payload
	}

	w.framesProcessed.Add(1)
	metrics.RecordFrameProcessed(w.name)

	if job.Sink != nil {
		job.Sink(result)
	}
}
