// Package expert implements the expert worker layer: each worker wraps one
// inference capability behind a bounded job queue with a single consumer
// loop. Workers never share jobs; a job is consumed exactly once.
package expert

import (
	"time"

	"github.com/Mentat-Vision/moe/frame"
)

// Payload carries the worker-specific result fields of one inference call
// (e.g. "detections", "caption"). The dispatch layer merges it into wire
// responses without interpreting it.
type Payload map[string]any

// Result is the outcome of processing one job: either a payload or an error
// reason, tagged with the producing expert and the originating camera.
type Result struct {
	Expert   string
	CameraID string
	Sequence uint64
	Payload  Payload
	Err      string
}

// Failed reports whether the result carries an inference error.
func (r Result) Failed() bool {
	return r.Err != ""
}

// Sink receives a worker's result. Sinks must not block; the aggregator's
// collect path is channel-backed for exactly that reason.
type Sink func(Result)

// Job is one unit of work for one worker. Created by the router, consumed
// exactly once by exactly one worker's processing loop.
type Job struct {
	CameraID    string
	Frame       *frame.Frame
	EnqueueTime time.Time
	Sink        Sink
}
