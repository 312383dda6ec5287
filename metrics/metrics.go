// Package metrics computes per-step aggregate statistics, lineage events,
// and organism snapshots, and assembles the persisted RunSummary.
//
// Grounded on _examples/pthm-soup/telemetry/stats.go (WindowStats manual
// mean/std loops, csv struct tags, LogValue) generalized per the Rust
// original's world/metrics.rs (exact Bessel-corrected SD, L1 drift,
// exhaustive-vs-sampled L2 diversity, per-organism spatial cohesion).
package metrics

import (
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/combin"
)

// StepMetrics is one sample of aggregate world state, per spec.md §4.10.
type StepMetrics struct {
	Step       uint64  `csv:"step" json:"step"`
	EnergyMean float32 `csv:"energy_mean" json:"energy_mean"`
	EnergyStd  float32 `csv:"energy_std" json:"energy_std"`
	WasteMean  float32 `csv:"waste_mean" json:"waste_mean"`
	WasteStd   float32 `csv:"waste_std" json:"waste_std"`

	BoundaryMean float32 `csv:"boundary_mean" json:"boundary_mean"`
	BoundaryStd  float32 `csv:"boundary_std" json:"boundary_std"`

	AliveCount     int     `csv:"alive_count" json:"alive_count"`
	ResourceTotal  float64 `csv:"resource_total" json:"resource_total"`
	BirthCount     int     `csv:"birth_count" json:"birth_count"`
	DeathCount     int     `csv:"death_count" json:"death_count"`
	PopulationSize int     `csv:"population_size" json:"population_size"`

	MeanGeneration float64 `csv:"mean_generation" json:"mean_generation"`
	MaxGeneration  uint32  `csv:"max_generation" json:"max_generation"`

	MeanGenomeDrift float32 `csv:"mean_genome_drift" json:"mean_genome_drift"`
	GenomeDiversity float32 `csv:"genome_diversity" json:"genome_diversity"`

	MeanAge      float64 `csv:"mean_age" json:"mean_age"`
	MaturityMean float32 `csv:"maturity_mean" json:"maturity_mean"`

	InternalStateMean [4]float32 `csv:"-" json:"internal_state_mean"`
	InternalStateStd  [4]float32 `csv:"-" json:"internal_state_std"`

	SpatialCohesionMean float32 `csv:"spatial_cohesion_mean" json:"spatial_cohesion_mean"`

	AgentIDExhaustionEvents uint64 `csv:"agent_id_exhaustion_events" json:"agent_id_exhaustion_events"`
}

// LogValue implements slog.LogValuer, following
// _examples/pthm-soup/telemetry/stats.go's WindowStats.LogValue, so a
// StepMetrics can be passed directly as a slog attribute.
func (m StepMetrics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("step", m.Step),
		slog.Float64("energy_mean", float64(m.EnergyMean)),
		slog.Float64("boundary_mean", float64(m.BoundaryMean)),
		slog.Int("alive_count", m.AliveCount),
		slog.Int("birth_count", m.BirthCount),
		slog.Int("death_count", m.DeathCount),
		slog.Float64("mean_generation", m.MeanGeneration),
		slog.Uint64("max_generation", uint64(m.MaxGeneration)),
		slog.Float64("genome_diversity", float64(m.GenomeDiversity)),
		slog.Float64("spatial_cohesion_mean", float64(m.SpatialCohesionMean)),
		slog.Uint64("agent_id_exhaustion_events", m.AgentIDExhaustionEvents),
	)
}

// LineageEvent ties a child to its parent at birth.
type LineageEvent struct {
	Step           uint64 `csv:"step" json:"step"`
	ParentStableID uint64 `csv:"parent_stable_id" json:"parent_stable_id"`
	ChildStableID  uint64 `csv:"child_stable_id" json:"child_stable_id"`
	Generation     uint32 `csv:"generation" json:"generation"`
}

// OrganismSnapshot is one organism's state at a recorded step.
type OrganismSnapshot struct {
	StableID          uint64  `json:"stable_id"`
	Generation        uint32  `json:"generation"`
	AgeSteps          uint64  `json:"age_steps"`
	Energy            float32 `json:"energy"`
	Waste             float32 `json:"waste"`
	BoundaryIntegrity float32 `json:"boundary_integrity"`
	Maturity          float32 `json:"maturity"`
	CenterX           float64 `json:"center_x"`
	CenterY           float64 `json:"center_y"`
	NAgents           int     `json:"n_agents"`
}

// SnapshotFrame is every organism's snapshot at one step.
type SnapshotFrame struct {
	Step      uint64             `json:"step"`
	Organisms []OrganismSnapshot `json:"organisms"`
}

// RunSummary is the full persisted output of an experiment run.
type RunSummary struct {
	SchemaVersion           int                `json:"schema_version"`
	Steps                   uint64             `json:"steps"`
	SampleEvery             int                `json:"sample_every"`
	FinalAliveCount         int                `json:"final_alive_count"`
	Samples                 []StepMetrics      `json:"samples"`
	Lifespans               []uint64           `json:"lifespans"`
	TotalReproductionEvents uint64             `json:"total_reproduction_events"`
	LineageEvents           []LineageEvent     `json:"lineage_events"`
	OrganismSnapshots       []SnapshotFrame    `json:"organism_snapshots,omitempty"`
}

// NewRunSummary builds an empty RunSummary with schema_version=1, per
// spec.md §6.
func NewRunSummary(steps uint64, sampleEvery int) RunSummary {
	return RunSummary{SchemaVersion: 1, Steps: steps, SampleEvery: sampleEvery}
}

// OrganismSample is the per-alive-organism input CollectStepMetrics needs.
// World assembles one of these per alive organism each sampled step.
type OrganismSample struct {
	Energy            float32
	Waste             float32
	BoundaryIntegrity float32
	Age               uint64
	Maturity          float32
	Generation        uint32
	GenomeDrift       float32   // L1(current.nn_weights, ancestor.nn_weights) / 212, precomputed by World
	CurrentNNWeights  []float32 // for pairwise L2 diversity
	AgentPositions    [][2]float64
	AgentInternalState [][4]float32
}

// StepInputs is everything CollectStepMetrics needs beyond the per-organism
// samples.
type StepInputs struct {
	Step                    uint64
	Organisms               []OrganismSample
	ResourceTotal           float64
	BirthCount              int
	DeathCount              int
	PopulationSize          int
	WorldSize               float64
	AgentIDExhaustionEvents uint64
}

// CollectStepMetrics computes one StepMetrics sample, matching
// world/metrics.rs's collect_step_metrics field-for-field.
func CollectStepMetrics(in StepInputs) StepMetrics {
	n := len(in.Organisms)
	m := StepMetrics{
		Step:                    in.Step,
		AliveCount:              n,
		ResourceTotal:           in.ResourceTotal,
		BirthCount:              in.BirthCount,
		DeathCount:              in.DeathCount,
		PopulationSize:          in.PopulationSize,
		AgentIDExhaustionEvents: in.AgentIDExhaustionEvents,
	}
	if n == 0 {
		return m
	}

	energy := make([]float64, n)
	waste := make([]float64, n)
	boundary := make([]float64, n)
	age := make([]float64, n)
	maturity := make([]float64, n)
	generation := make([]float64, n)
	drift := make([]float64, n)

	for i, o := range in.Organisms {
		energy[i] = float64(o.Energy)
		waste[i] = float64(o.Waste)
		boundary[i] = float64(o.BoundaryIntegrity)
		age[i] = float64(o.Age)
		maturity[i] = float64(o.Maturity)
		generation[i] = float64(o.Generation)
		drift[i] = float64(o.GenomeDrift)
	}

	mean, std := meanStd(energy)
	m.EnergyMean, m.EnergyStd = float32(mean), float32(std)
	mean, std = meanStd(waste)
	m.WasteMean, m.WasteStd = float32(mean), float32(std)
	mean, std = meanStd(boundary)
	m.BoundaryMean, m.BoundaryStd = float32(mean), float32(std)

	m.MeanAge = stat.Mean(age, nil)
	m.MaturityMean = float32(stat.Mean(maturity, nil))
	m.MeanGeneration = stat.Mean(generation, nil)
	m.MeanGenomeDrift = float32(stat.Mean(drift, nil))

	var maxGen uint32
	for _, o := range in.Organisms {
		if o.Generation > maxGen {
			maxGen = o.Generation
		}
	}
	m.MaxGeneration = maxGen

	m.InternalStateMean, m.InternalStateStd = internalStateMeanStd(in.Organisms)
	m.GenomeDiversity = computeGenomeDiversity(in.Organisms, in.Step)
	m.SpatialCohesionMean = computeSpatialCohesion(in.Organisms, in.WorldSize)

	return m
}

// meanStd returns the mean and Bessel-corrected (n-1) sample standard
// deviation, 0 if n < 2.
func meanStd(values []float64) (mean, std float64) {
	mean = stat.Mean(values, nil)
	if len(values) < 2 {
		return mean, 0
	}
	return mean, stat.StdDev(values, nil)
}

func internalStateMeanStd(organisms []OrganismSample) (mean, std [4]float32) {
	var components [4][]float64
	for _, o := range organisms {
		for _, s := range o.AgentInternalState {
			for k := 0; k < 4; k++ {
				components[k] = append(components[k], float64(s[k]))
			}
		}
	}
	for k := 0; k < 4; k++ {
		mu, sigma := meanStd(components[k])
		mean[k] = float32(mu)
		std[k] = float32(sigma)
	}
	return
}

// computeGenomeDiversity returns the mean L2 distance between alive
// organisms' nn_weights vectors: every C(n,2) pair if that count is <= 50,
// else exactly 50 pairs sampled via a dedicated RNG seeded from step_index.
func computeGenomeDiversity(organisms []OrganismSample, stepIndex uint64) float32 {
	n := len(organisms)
	if n < 2 {
		return 0
	}
	totalPairs := combin.Binomial(n, 2)

	var sum float64
	var count int
	if totalPairs <= 50 {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				sum += l2Distance(organisms[i].CurrentNNWeights, organisms[j].CurrentNNWeights)
				count++
			}
		}
	} else {
		rng := rand.New(rand.NewSource(int64(stepIndex)))
		for k := 0; k < 50; k++ {
			i := rng.Intn(n)
			j := rng.Intn(n - 1)
			if j >= i {
				j++
			}
			sum += l2Distance(organisms[i].CurrentNNWeights, organisms[j].CurrentNNWeights)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float32(sum / float64(count))
}

func l2Distance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	fa := make([]float64, n)
	fb := make([]float64, n)
	for i := 0; i < n; i++ {
		fa[i] = float64(a[i])
		fb[i] = float64(b[i])
	}
	return floats.Distance(fa, fb, 2)
}

// computeSpatialCohesion returns the mean, over alive organisms with >= 2
// agents, of the mean pairwise toroidal Euclidean distance of its agents —
// NOT agent-count-weighted.
func computeSpatialCohesion(organisms []OrganismSample, worldSize float64) float32 {
	var sum float64
	var count int
	for _, o := range organisms {
		k := len(o.AgentPositions)
		if k < 2 {
			continue
		}
		var pairSum float64
		var pairCount int
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				pairSum += toroidalDistance(o.AgentPositions[i], o.AgentPositions[j], worldSize)
				pairCount++
			}
		}
		if pairCount > 0 {
			sum += pairSum / float64(pairCount)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float32(sum / float64(count))
}

func toroidalDistance(a, b [2]float64, worldSize float64) float64 {
	dx := toroidalAxisDelta(a[0], b[0], worldSize)
	dy := toroidalAxisDelta(a[1], b[1], worldSize)
	return math.Sqrt(dx*dx + dy*dy)
}

func toroidalAxisDelta(a, b, size float64) float64 {
	d := b - a
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}
