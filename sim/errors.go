package sim

import "errors"

var (
	// ErrInsufficientHostCapacity is returned when no host can admit a VM.
	// Cloudlets bound to that VM are failed without execution.
	ErrInsufficientHostCapacity = errors.New("insufficient host capacity")

	// ErrInvalidScenarioConfig rejects a scenario before the simulation starts.
	ErrInvalidScenarioConfig = errors.New("invalid scenario config")

	// ErrQueueConsistencyViolation means the event queue drained while some
	// cloudlet was still non-terminal. It always indicates a scheduler bug.
	ErrQueueConsistencyViolation = errors.New("queue consistency violation")
)
