package world

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying each WorldInitError/ExperimentError case, in
// the style of _examples/pthm-soup/telemetry/snapshot.go's wrapped-error
// idiom, generalized to the Rust original's world/mod.rs enum variants.
var (
	ErrInvalidConfig        = errors.New("world: invalid configuration")
	ErrNumOrganismsMismatch = errors.New("world: founder genome count does not match num_organisms")
	ErrAgentCountOverflow   = errors.New("world: num_organisms * agents_per_organism overflows")
	ErrTooManyAgents        = errors.New("world: agent count exceeds MaxTotalAgents")
	ErrAgentCountMismatch   = errors.New("world: founder agent count does not match the expected layout")
	ErrInvalidOrganismID    = errors.New("world: a founder agent references an out-of-range organism id")

	ErrInvalidSampleEvery = errors.New("world: sample_every must be > 0")
	ErrTooManySteps       = errors.New("world: steps exceeds MaxExperimentSteps")
	ErrTooManySamples     = errors.New("world: requested sample count exceeds MaxExperimentSamples")
)

// WorldInitError reports why New/TryNew rejected its inputs.
type WorldInitError struct {
	Err      error
	Expected int
	Actual   int
	Max      int
}

func (e *WorldInitError) Error() string {
	switch {
	case errors.Is(e.Err, ErrNumOrganismsMismatch), errors.Is(e.Err, ErrAgentCountMismatch):
		return fmt.Sprintf("%s: expected %d, got %d", e.Err, e.Expected, e.Actual)
	case errors.Is(e.Err, ErrTooManyAgents):
		return fmt.Sprintf("%s: max %d, got %d", e.Err, e.Max, e.Actual)
	default:
		return e.Err.Error()
	}
}

func (e *WorldInitError) Unwrap() error { return e.Err }

// ExperimentError reports why a requested experiment run was rejected
// before its first step.
type ExperimentError struct {
	Err    error
	Max    int
	Actual int
}

func (e *ExperimentError) Error() string {
	if e.Max == 0 && e.Actual == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: max %d, requested %d", e.Err, e.Max, e.Actual)
}

func (e *ExperimentError) Unwrap() error { return e.Err }
