package world

import (
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/alifesim/config"
	"github.com/pthm-cable/alifesim/development"
	"github.com/pthm-cable/alifesim/genome"
	"github.com/pthm-cable/alifesim/metabolism"
	"github.com/pthm-cable/alifesim/neuralnet"
	"github.com/pthm-cable/alifesim/resourcefield"
)

// New builds a World and panics on invalid input, mirroring the Rust
// original's World::new wrapping try_new.
func New(cfg *config.Config, agents []Agent, genomes []genome.Genome) *World {
	w, err := TryNew(cfg, agents, genomes)
	if err != nil {
		panic(err)
	}
	return w
}

// TryNew validates inputs and builds a World, per spec.md §7's
// WorldInitError taxonomy. agents must already carry their founder
// positions/velocities; genomes must have length cfg.NumOrganisms, one per
// organism, with segment 0 (neural weights) founder-initialized.
func TryNew(cfg *config.Config, agents []Agent, genomes []genome.Genome) (*World, error) {
	if cfg == nil {
		return nil, &WorldInitError{Err: ErrInvalidConfig}
	}
	if len(genomes) != cfg.NumOrganisms {
		return nil, &WorldInitError{Err: ErrNumOrganismsMismatch, Expected: cfg.NumOrganisms, Actual: len(genomes)}
	}

	expected := cfg.NumOrganisms * cfg.AgentsPerOrganism
	if cfg.NumOrganisms != 0 && expected/cfg.NumOrganisms != cfg.AgentsPerOrganism {
		return nil, &WorldInitError{Err: ErrAgentCountOverflow}
	}
	if expected > MaxTotalAgents {
		return nil, &WorldInitError{Err: ErrTooManyAgents, Max: MaxTotalAgents, Actual: expected}
	}
	if len(agents) != expected {
		return nil, &WorldInitError{Err: ErrAgentCountMismatch, Expected: expected, Actual: len(agents)}
	}
	for _, a := range agents {
		if int(a.OrganismID) >= len(genomes) {
			return nil, &WorldInitError{Err: ErrInvalidOrganismID}
		}
	}

	organisms := make([]Organism, len(genomes))
	for i, g := range genomes {
		nn := neuralnet.FromWeights(g.NNWeights())
		organisms[i] = Organism{
			ID:                uint16(i),
			StableID:          uint64(i),
			Generation:        0,
			Alive:             true,
			BoundaryIntegrity: 1.0,
			Genome:            g.Clone(),
			AncestorGenome:    g.Clone(),
			NN:                nn,
			Maturity:          1.0,
			Development:       development.Decode(g.SegmentData(genome.SegDevelopmental), cfg.GrowthImmatureMetabolicEfficiency),
		}
	}
	for _, a := range agents {
		org := &organisms[a.OrganismID]
		org.AgentIDs = append(org.AgentIDs, a.ID)
	}

	mode, ok := metabolism.ParseMode(cfg.MetabolismMode)
	if !ok {
		return nil, &WorldInitError{Err: ErrInvalidConfig}
	}

	initRNG := rand.New(rand.NewSource(int64(cfg.Seed + 1)))
	if mode == metabolism.ModeGraph {
		for i := range organisms {
			seg := make([]float32, 16)
			for j := range seg {
				seg[j] = float32(initRNG.Float64()-0.5) // uniform in [-0.5, 0.5)
			}
			organisms[i].Genome.SetSegmentData(genome.SegMetabolic, seg)
			eng := metabolism.NewGraph(seg)
			organisms[i].Engine = &eng
		}
	}

	var worldEngine metabolism.Engine
	switch mode {
	case metabolism.ModeToy:
		worldEngine = metabolism.NewToy(1.0, 0.1, 0.1)
	case metabolism.ModeCounter:
		worldEngine = metabolism.NewCounter(0.1, 0.05)
	case metabolism.ModeGraph:
		worldEngine = metabolism.Engine{Mode: metabolism.ModeGraph}
	}

	maxAgentID := uint32(0)
	for _, a := range agents {
		if a.ID > maxAgentID {
			maxAgentID = a.ID
		}
	}

	w := &World{
		cfg:                 cfg,
		agents:              agents,
		organisms:           organisms,
		nextAgentID:         maxAgentID + 1,
		nextStableID:        uint64(len(organisms)),
		rng:                 rand.New(rand.NewSource(int64(cfg.Seed))),
		field:               resourcefield.New(cfg.WorldSize, cfg.ResourceField.CellSize, cfg.ResourceField.Cap, cfg.ResourceField.InitialSeed, cfg.Seed),
		worldEngine:         worldEngine,
		currentResourceRate: cfg.ResourceRegenerationRate,
		perf:                newPhaseTimer(60),
	}
	w.resizeScratch()

	slog.Info("world_initialized",
		"num_organisms", cfg.NumOrganisms,
		"agents_per_organism", cfg.AgentsPerOrganism,
		"metabolism_mode", cfg.MetabolismMode,
		"world_size", cfg.WorldSize,
		"seed", cfg.Seed,
	)
	return w, nil
}

func (w *World) resizeScratch() {
	n := len(w.organisms)
	w.neighborCountSum = make([]float64, n)
	w.neighborAgentN = make([]int, n)
	w.sinX = make([]float64, n)
	w.cosX = make([]float64, n)
	w.sinY = make([]float64, n)
	w.cosY = make([]float64, n)
	w.homeostasisSum = make([]float64, n)
	w.homeostasisAgentN = make([]int, n)
	w.centers = make([][2]float64, n)
}

// NewRandomFounders is a convenience constructor folding in the "external
// collaborator" role spec.md §1 assigns to founder construction: it lays
// out cfg.NumOrganisms organisms of cfg.AgentsPerOrganism agents each at
// uniformly random positions, with freshly randomized neural weights. It
// uses a distinct RNG stream seeded from cfg.Seed so it never perturbs the
// main RNG sequence the step pipeline's determinism guarantee covers.
func NewRandomFounders(cfg *config.Config) (*World, error) {
	founderRNG := rand.New(rand.NewSource(int64(cfg.Seed)))

	genomes := make([]genome.Genome, cfg.NumOrganisms)
	for i := range genomes {
		weights := make([]float32, neuralnet.WeightCount)
		for j := range weights {
			weights[j] = float32(founderRNG.Float64()*2 - 1)
		}
		genomes[i] = genome.WithNNWeights(weights)
	}

	agents := make([]Agent, 0, cfg.NumOrganisms*cfg.AgentsPerOrganism)
	nextID := uint32(0)
	for i := 0; i < cfg.NumOrganisms; i++ {
		for j := 0; j < cfg.AgentsPerOrganism; j++ {
			agents = append(agents, Agent{
				ID:            nextID,
				OrganismID:    uint16(i),
				Position:      [2]float64{founderRNG.Float64() * cfg.WorldSize, founderRNG.Float64() * cfg.WorldSize},
				InternalState: [4]float32{0, 0, 1, 0},
			})
			nextID++
		}
	}

	return TryNew(cfg, agents, genomes)
}
