package evaluation

import "fmt"

// ResourceError reports an unreachable external resource (a missing dataset
// file, an unreadable path). Distinct from validation errors so callers can
// map it to the right status.
type ResourceError struct {
	Resource string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource unavailable: %s: %v", e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// EvaluationError wraps an unexpected failure during metric computation.
// The underlying cause is always attached, never swallowed.
type EvaluationError struct {
	Stage string
	Err   error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation failed during %s: %v", e.Stage, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
