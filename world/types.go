// Package world owns the full simulation state — agents, organisms, the
// resource field, RNG streams, and per-organism aggregates — and drives the
// seven-phase step pipeline.
//
// Grounded on _examples/pthm-soup/game/simulation.go (collect-then-spawn
// two-pass reproduction idiom, reused-buffer query loops) and
// game/lifecycle.go (two-pass dead-entity removal idiom), generalized per
// the authoritative phase order and formulas in
// _examples/original_source/crates/digital-life-core/src/world/mod.rs and
// world/lifecycle.rs.
package world

import (
	"math/rand"

	"github.com/pthm-cable/alifesim/config"
	"github.com/pthm-cable/alifesim/development"
	"github.com/pthm-cable/alifesim/genome"
	"github.com/pthm-cable/alifesim/metabolism"
	"github.com/pthm-cable/alifesim/metrics"
	"github.com/pthm-cable/alifesim/neuralnet"
	"github.com/pthm-cable/alifesim/resourcefield"
)

// MaxTotalAgents bounds total agent count across the run. The Rust
// original's SimConfig::MAX_TOTAL_AGENTS constant lives in a config.rs file
// that was not part of the retrieved original_source/ pack (only
// world/mod.rs and world/lifecycle.rs, which reference but don't define
// it, were retrieved); this value is this module's own choice, scaled
// consistently with World's MaxExperimentSteps/MaxExperimentSamples.
const MaxTotalAgents = 100_000

// MaxExperimentSteps and MaxExperimentSamples cap try_run_experiment
// requests, per spec.md §6 and the confirmed World::MAX_EXPERIMENT_STEPS /
// MAX_EXPERIMENT_SAMPLES constants in world/mod.rs.
const (
	MaxExperimentSteps   = 1_000_000
	MaxExperimentSamples = 50_000
)

// Agent is one spatially embedded point belonging to exactly one organism.
type Agent struct {
	ID            uint32
	OrganismID    uint16
	Position      [2]float64
	Velocity      [2]float64
	InternalState [4]float32
}

// Organism is a cohesive cluster of agents sharing a neural controller,
// genome, and metabolic state.
type Organism struct {
	ID                uint16
	StableID          uint64
	Generation        uint32
	AgeSteps          uint64
	Alive             bool
	BoundaryIntegrity float32
	Metabolic         metabolism.State
	Genome            genome.Genome
	AncestorGenome    genome.Genome
	NN                neuralnet.NeuralNet
	AgentIDs          []uint32
	Maturity          float32
	// Engine is non-nil only in Graph mode, where metabolism parameters are
	// per-organism; Toy/Counter organisms use World.worldEngine instead.
	Engine         *metabolism.Engine
	Development    development.Program
	ParentStableID *uint64
}

// engine returns the metabolism engine this organism should step: its own
// in Graph mode, otherwise the world-shared engine.
func (o *Organism) engine(worldEngine metabolism.Engine) metabolism.Engine {
	if o.Engine != nil {
		return *o.Engine
	}
	return worldEngine
}

// World owns every piece of mutable simulation state. Per spec.md §9, it
// models organisms and agents as two parallel arrays with an index
// mapping, not a pointer graph.
type World struct {
	cfg *config.Config

	agents    []Agent
	organisms []Organism

	nextAgentID  uint32
	nextStableID uint64

	rng   *rand.Rand
	field *resourcefield.Field

	worldEngine metabolism.Engine

	stepIndex uint64

	birthsLastStep int
	deathsLastStep int
	totalBirths    uint64
	totalDeaths    uint64

	agentIDExhaustionsLastStep int
	totalAgentIDExhaustions    uint64

	lifespans     []uint64
	lineageEvents []metrics.LineageEvent

	currentResourceRate float32

	// Per-step scratch, sized to len(organisms) and reset at the start of
	// each step. Disjoint per organism id, per spec.md §5's shared-resource
	// discipline.
	neighborCountSum  []float64
	neighborAgentN    []int
	sinX, cosX        []float64
	sinY, cosY        []float64
	homeostasisSum    []float64
	homeostasisAgentN []int
	centers           [][2]float64

	perf *phaseTimer
}

// Config returns the world's configuration.
func (w *World) Config() *config.Config { return w.cfg }

// Agents returns the live agent slice (read-only use expected).
func (w *World) Agents() []Agent { return w.agents }

// Organisms returns the organism slice (read-only use expected).
func (w *World) Organisms() []Organism { return w.organisms }

// StepIndex returns the number of steps run so far.
func (w *World) StepIndex() uint64 { return w.stepIndex }

// AliveOrganismCount returns how many organisms are currently alive.
func (w *World) AliveOrganismCount() int {
	n := 0
	for _, o := range w.organisms {
		if o.Alive {
			n++
		}
	}
	return n
}

// TotalBirths and TotalDeaths return run-lifetime counters.
func (w *World) TotalBirths() uint64 { return w.totalBirths }
func (w *World) TotalDeaths() uint64 { return w.totalDeaths }
