package world

import (
	"math"
	"testing"

	"github.com/pthm-cable/alifesim/config"
	"github.com/pthm-cable/alifesim/genome"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load(\"\") = %v", err)
	}
	return cfg
}

func mustNewRandomFounders(t *testing.T, cfg *config.Config) *World {
	t.Helper()
	w, err := NewRandomFounders(cfg)
	if err != nil {
		t.Fatalf("NewRandomFounders: %v", err)
	}
	return w
}

func TestTryNewRejectsGenomeCountMismatch(t *testing.T) {
	cfg := testConfig(t)
	cfg.NumOrganisms = 2
	_, err := TryNew(cfg, nil, nil)
	if err == nil {
		t.Fatal("expected an error for mismatched genome count")
	}
	wie, ok := err.(*WorldInitError)
	if !ok || wie.Err != ErrNumOrganismsMismatch {
		t.Fatalf("got %v, want ErrNumOrganismsMismatch", err)
	}
}

func TestTryNewRejectsTooManyAgents(t *testing.T) {
	cfg := testConfig(t)
	cfg.NumOrganisms = 1
	cfg.AgentsPerOrganism = MaxTotalAgents + 1
	genomes := []genome.Genome{genome.WithNNWeights(make([]float32, 212))}

	_, err := TryNew(cfg, nil, genomes)
	if err == nil {
		t.Fatal("expected an error for over-budget agent count")
	}
	wie, ok := err.(*WorldInitError)
	if !ok || wie.Err != ErrTooManyAgents {
		t.Fatalf("got %v, want ErrTooManyAgents", err)
	}
}

func TestNewRandomFoundersProducesExpectedCounts(t *testing.T) {
	cfg := testConfig(t)
	cfg.NumOrganisms = 4
	cfg.AgentsPerOrganism = 5

	w := mustNewRandomFounders(t, cfg)
	if got := len(w.Organisms()); got != 4 {
		t.Fatalf("len(Organisms()) = %d, want 4", got)
	}
	if got := len(w.Agents()); got != 20 {
		t.Fatalf("len(Agents()) = %d, want 20", got)
	}
	if got := w.AliveOrganismCount(); got != 4 {
		t.Fatalf("AliveOrganismCount() = %d, want 4", got)
	}
}

func TestStepKeepsPositionsWithinWorldAndSpeedBounded(t *testing.T) {
	cfg := testConfig(t)
	cfg.NumOrganisms = 4
	cfg.AgentsPerOrganism = 5
	w := mustNewRandomFounders(t, cfg)

	for i := 0; i < 20; i++ {
		w.Step()
	}

	for _, a := range w.Agents() {
		for axis := 0; axis < 2; axis++ {
			if a.Position[axis] < 0 || a.Position[axis] >= cfg.WorldSize {
				t.Fatalf("agent %d position[%d] = %v out of [0, %v)", a.ID, axis, a.Position[axis], cfg.WorldSize)
			}
		}
		speed := math.Hypot(a.Velocity[0], a.Velocity[1])
		if speed > cfg.MaxSpeed+1e-9 {
			t.Fatalf("agent %d speed = %v exceeds max_speed %v", a.ID, speed, cfg.MaxSpeed)
		}
		for k, v := range a.InternalState {
			if v != v {
				t.Fatalf("agent %d internal_state[%d] is NaN", a.ID, k)
			}
		}
	}
}

func TestStepNeverDecreasesNextAgentID(t *testing.T) {
	cfg := testConfig(t)
	cfg.NumOrganisms = 4
	cfg.AgentsPerOrganism = 4
	cfg.ReproductionMinEnergy = 0
	cfg.ReproductionMinBoundary = 0
	cfg.ReproductionEnergyCost = 0
	w := mustNewRandomFounders(t, cfg)
	for i := range w.organisms {
		w.organisms[i].Maturity = 1.0
		w.organisms[i].Metabolic.Energy = 10
		w.organisms[i].BoundaryIntegrity = 1.0
	}

	prev := w.nextAgentID
	for i := 0; i < 10; i++ {
		w.Step()
		if w.nextAgentID < prev {
			t.Fatalf("next_agent_id decreased: %d -> %d", prev, w.nextAgentID)
		}
		prev = w.nextAgentID
	}
}

func TestCompactionPreservesSurvivorOrderAndStableIDs(t *testing.T) {
	cfg := testConfig(t)
	cfg.NumOrganisms = 3
	cfg.AgentsPerOrganism = 2
	cfg.CompactionIntervalSteps = 1
	w := mustNewRandomFounders(t, cfg)

	w.markDead(0)
	w.pruneDeadEntities()

	if got := len(w.organisms); got != 2 {
		t.Fatalf("len(organisms) after compaction = %d, want 2", got)
	}
	if w.organisms[0].StableID != 1 {
		t.Fatalf("surviving organism 0 has stable_id %d, want 1", w.organisms[0].StableID)
	}
	for _, a := range w.agents {
		if int(a.OrganismID) >= len(w.organisms) {
			t.Fatalf("agent %d references out-of-range organism_id %d", a.ID, a.OrganismID)
		}
		if !w.organisms[a.OrganismID].Alive {
			t.Fatalf("agent %d references a dead organism", a.ID)
		}
	}
}

func TestOrganismsHaveDistinctStableIDs(t *testing.T) {
	cfg := testConfig(t)
	cfg.NumOrganisms = 6
	cfg.AgentsPerOrganism = 3
	w := mustNewRandomFounders(t, cfg)

	seen := make(map[uint64]bool)
	for _, o := range w.organisms {
		if seen[o.StableID] {
			t.Fatalf("duplicate stable_id %d", o.StableID)
		}
		seen[o.StableID] = true
	}
}

func TestDeterminismOfIdenticalConfigAndSeed(t *testing.T) {
	newCfg := func() *config.Config {
		cfg := testConfig(t)
		cfg.NumOrganisms = 4
		cfg.AgentsPerOrganism = 10
		cfg.Seed = 7
		cfg.MetabolismMode = "Toy"
		return cfg
	}

	wa := mustNewRandomFounders(t, newCfg())
	wb := mustNewRandomFounders(t, newCfg())

	summaryA, err := wa.TryRunExperiment(100, 10)
	if err != nil {
		t.Fatalf("run A: %v", err)
	}
	summaryB, err := wb.TryRunExperiment(100, 10)
	if err != nil {
		t.Fatalf("run B: %v", err)
	}

	if len(summaryA.Samples) != len(summaryB.Samples) {
		t.Fatalf("sample counts differ: %d vs %d", len(summaryA.Samples), len(summaryB.Samples))
	}
	for i := range summaryA.Samples {
		a, b := summaryA.Samples[i], summaryB.Samples[i]
		if a != b {
			t.Fatalf("sample %d diverged:\n%+v\n%+v", i, a, b)
		}
	}
}

func TestExperimentSamplesEveryIntervalAndFinalStep(t *testing.T) {
	cfg := testConfig(t)
	cfg.NumOrganisms = 2
	cfg.AgentsPerOrganism = 3
	w := mustNewRandomFounders(t, cfg)

	summary, err := w.TryRunExperiment(23, 10)
	if err != nil {
		t.Fatalf("TryRunExperiment: %v", err)
	}

	// Steps 10, 20, and the unaligned final step 23 — three samples, not two.
	if len(summary.Samples) != 3 {
		t.Fatalf("len(Samples) = %d, want 3", len(summary.Samples))
	}
	if summary.Samples[len(summary.Samples)-1].Step != 23 {
		t.Fatalf("final sample step = %d, want 23", summary.Samples[len(summary.Samples)-1].Step)
	}
}

func TestExperimentWithZeroStepsTakesNoSamples(t *testing.T) {
	cfg := testConfig(t)
	cfg.NumOrganisms = 2
	cfg.AgentsPerOrganism = 3
	w := mustNewRandomFounders(t, cfg)

	summary, err := w.TryRunExperiment(0, 10)
	if err != nil {
		t.Fatalf("TryRunExperiment: %v", err)
	}
	if len(summary.Samples) != 0 {
		t.Fatalf("len(Samples) = %d, want 0", len(summary.Samples))
	}
}

func TestReproductionProducesLineageEvents(t *testing.T) {
	cfg := testConfig(t)
	cfg.NumOrganisms = 3
	cfg.AgentsPerOrganism = 4
	cfg.ReproductionMinEnergy = 0
	cfg.ReproductionMinBoundary = 0
	cfg.ReproductionEnergyCost = 0
	cfg.EnableMetabolism = false
	cfg.EnableBoundaryMaintenance = false
	w := mustNewRandomFounders(t, cfg)
	for i := range w.organisms {
		w.organisms[i].Maturity = 1.0
		w.organisms[i].Metabolic.Energy = 10
		w.organisms[i].BoundaryIntegrity = 1.0
	}

	summary, err := w.TryRunExperiment(5, 5)
	if err != nil {
		t.Fatalf("TryRunExperiment: %v", err)
	}
	if summary.TotalReproductionEvents == 0 {
		t.Fatal("expected at least one reproduction event")
	}
	foundGenerationOne := false
	for _, ev := range summary.LineageEvents {
		if ev.Generation == 1 {
			foundGenerationOne = true
			break
		}
	}
	if !foundGenerationOne {
		t.Fatal("expected a generation-1 lineage event")
	}
}

func TestPhaseTimingsCoversEveryPipelinePhase(t *testing.T) {
	cfg := testConfig(t)
	w := mustNewRandomFounders(t, cfg)
	for i := 0; i < 3; i++ {
		w.Step()
	}

	timings := w.PhaseTimings()
	for _, phase := range []string{
		PhaseSpatialIndex, PhaseNNQuery, PhaseAgentState, PhaseBoundary,
		PhaseMetabolism, PhaseGrowthCrowding, PhaseReproduction, PhaseEnvironment,
	} {
		if _, ok := timings[phase]; !ok {
			t.Errorf("PhaseTimings missing phase %q", phase)
		}
	}
}
