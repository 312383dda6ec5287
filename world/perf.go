package world

import "time"

// Phase names for Step's seven-phase pipeline (spec.md §4.7), plus the two
// sub-steps compaction and environment folds into the same tick.
const (
	PhaseSpatialIndex   = "spatial_index"
	PhaseNNQuery        = "nn_query"
	PhaseAgentState     = "agent_state"
	PhaseBoundary       = "boundary"
	PhaseMetabolism     = "metabolism"
	PhaseGrowthCrowding = "growth_crowding"
	PhaseReproduction   = "reproduction"
	PhaseCompaction     = "compaction"
	PhaseEnvironment    = "environment"
)

// phaseTimer tracks per-phase step durations over a rolling window,
// following _examples/pthm-soup/telemetry/perf.go's PerfCollector: phases
// are timed by bracketing StartPhase calls against a shared phaseStart
// clock, rather than each phase owning its own timer.
type phaseTimer struct {
	windowSize    int
	samples       []map[string]time.Duration
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	phaseStart    time.Time
	lastPhase     string
}

func newPhaseTimer(windowSize int) *phaseTimer {
	if windowSize < 1 {
		windowSize = 60
	}
	return &phaseTimer{
		windowSize: windowSize,
		samples:    make([]map[string]time.Duration, windowSize),
	}
}

// StartTick begins timing a new step's phases.
func (p *phaseTimer) StartTick() {
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase ends the previous phase's timing (if any) and begins the next.
func (p *phaseTimer) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick closes out the final phase and records this step's sample.
func (p *phaseTimer) EndTick() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.samples[p.writeIndex] = p.currentPhases
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// Snapshot averages each phase's duration over the current window,
// returning microsecond-precision durations per spec.md §5.
func (p *phaseTimer) Snapshot() map[string]time.Duration {
	sum := make(map[string]time.Duration)
	if p.sampleCount == 0 {
		return sum
	}
	for i := 0; i < p.sampleCount; i++ {
		for phase, d := range p.samples[i] {
			sum[phase] += d
		}
	}
	avg := make(map[string]time.Duration, len(sum))
	for phase, total := range sum {
		avg[phase] = (total / time.Duration(p.sampleCount)).Round(time.Microsecond)
	}
	return avg
}

// PhaseTimings returns the rolling average wall-clock duration of each
// Step pipeline phase, ambient instrumentation outside invariant-bearing
// state.
func (w *World) PhaseTimings() map[string]time.Duration {
	return w.perf.Snapshot()
}
