package expert

import "context"

// Capability is the inference contract a worker wraps: initialize the
// underlying model once, then process one job at a time. Implementations
// live outside the core (remote model servers); the core only calls them.
type Capability interface {
	// Initialize prepares the underlying model or connection. A failure
	// aborts only this worker's registration; the server continues with
	// the remaining experts.
	Initialize(ctx context.Context) error

	// Process runs inference on one job and returns the result payload.
	// Errors are captured per-job by the worker loop and never terminate it.
	Process(ctx context.Context, job *Job) (Payload, error)
}

// CapabilityFunc adapts a plain function into a Capability with a no-op
// Initialize. Used by tests and simple in-process experts.
type CapabilityFunc func(ctx context.Context, job *Job) (Payload, error)

func (f CapabilityFunc) Initialize(ctx context.Context) error { return nil }

func (f CapabilityFunc) Process(ctx context.Context, job *Job) (Payload, error) {
	return f(ctx, job)
}
