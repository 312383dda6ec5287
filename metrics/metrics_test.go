package metrics

import "testing"

func TestCollectStepMetricsOnEmptyOrganisms(t *testing.T) {
	m := CollectStepMetrics(StepInputs{Step: 5, PopulationSize: 0})
	if m.AliveCount != 0 {
		t.Fatalf("AliveCount = %d, want 0", m.AliveCount)
	}
	if m.Step != 5 {
		t.Fatalf("Step = %d, want 5", m.Step)
	}
}

func TestCollectStepMetricsMeansAndStdDev(t *testing.T) {
	in := StepInputs{
		Step: 1,
		Organisms: []OrganismSample{
			{Energy: 1, Waste: 0, BoundaryIntegrity: 1, Age: 10, Generation: 0, CurrentNNWeights: []float32{1, 0}},
			{Energy: 3, Waste: 0, BoundaryIntegrity: 1, Age: 20, Generation: 1, CurrentNNWeights: []float32{0, 1}},
		},
	}
	m := CollectStepMetrics(in)

	if m.AliveCount != 2 {
		t.Fatalf("AliveCount = %d, want 2", m.AliveCount)
	}
	if m.EnergyMean != 2 {
		t.Fatalf("EnergyMean = %v, want 2", m.EnergyMean)
	}
	// Sample stddev (n-1) of {1,3} is sqrt(2).
	if diff := m.EnergyStd - 1.4142135; diff > 1e-4 || diff < -1e-4 {
		t.Fatalf("EnergyStd = %v, want ~1.41421", m.EnergyStd)
	}
	if m.MaxGeneration != 1 {
		t.Fatalf("MaxGeneration = %d, want 1", m.MaxGeneration)
	}
}

func TestCollectStepMetricsStdDevIsZeroForSingleOrganism(t *testing.T) {
	in := StepInputs{
		Organisms: []OrganismSample{
			{Energy: 5, CurrentNNWeights: []float32{1}},
		},
	}
	m := CollectStepMetrics(in)
	if m.EnergyStd != 0 {
		t.Fatalf("EnergyStd = %v, want 0 for n=1", m.EnergyStd)
	}
}

func TestGenomeDiversityIsZeroForIdenticalGenomes(t *testing.T) {
	in := StepInputs{
		Organisms: []OrganismSample{
			{CurrentNNWeights: []float32{1, 2, 3}},
			{CurrentNNWeights: []float32{1, 2, 3}},
		},
	}
	m := CollectStepMetrics(in)
	if m.GenomeDiversity != 0 {
		t.Fatalf("GenomeDiversity = %v, want 0 for identical genomes", m.GenomeDiversity)
	}
}

func TestGenomeDiversityExhaustiveUnderFiftyPairs(t *testing.T) {
	organisms := make([]OrganismSample, 5) // C(5,2) = 10 <= 50
	for i := range organisms {
		organisms[i] = OrganismSample{CurrentNNWeights: []float32{float32(i)}}
	}
	m := CollectStepMetrics(StepInputs{Organisms: organisms})
	if m.GenomeDiversity <= 0 {
		t.Fatalf("GenomeDiversity = %v, want > 0 for distinct genomes", m.GenomeDiversity)
	}
}

func TestGenomeDiversitySampledAboveFiftyPairsIsDeterministic(t *testing.T) {
	organisms := make([]OrganismSample, 20) // C(20,2) = 190 > 50
	for i := range organisms {
		organisms[i] = OrganismSample{CurrentNNWeights: []float32{float32(i), float32(-i)}}
	}
	a := CollectStepMetrics(StepInputs{Step: 42, Organisms: organisms})
	b := CollectStepMetrics(StepInputs{Step: 42, Organisms: organisms})
	if a.GenomeDiversity != b.GenomeDiversity {
		t.Fatalf("GenomeDiversity not deterministic for fixed step_index: %v != %v", a.GenomeDiversity, b.GenomeDiversity)
	}
}

func TestSpatialCohesionIgnoresSingleAgentOrganisms(t *testing.T) {
	in := StepInputs{
		WorldSize: 100,
		Organisms: []OrganismSample{
			{AgentPositions: [][2]float64{{0, 0}}},
		},
	}
	m := CollectStepMetrics(in)
	if m.SpatialCohesionMean != 0 {
		t.Fatalf("SpatialCohesionMean = %v, want 0 when no organism has >= 2 agents", m.SpatialCohesionMean)
	}
}

func TestSpatialCohesionWrapsToroidally(t *testing.T) {
	in := StepInputs{
		WorldSize: 100,
		Organisms: []OrganismSample{
			{AgentPositions: [][2]float64{{1, 50}, {99, 50}}},
		},
	}
	m := CollectStepMetrics(in)
	if m.SpatialCohesionMean > 3 {
		t.Fatalf("SpatialCohesionMean = %v, want ~2 (wrapped distance), not ~98", m.SpatialCohesionMean)
	}
}

func TestNewRunSummaryHasSchemaVersionOne(t *testing.T) {
	rs := NewRunSummary(100, 10)
	if rs.SchemaVersion != 1 {
		t.Fatalf("SchemaVersion = %d, want 1", rs.SchemaVersion)
	}
	if rs.Steps != 100 || rs.SampleEvery != 10 {
		t.Fatalf("NewRunSummary did not record steps/sample_every: %+v", rs)
	}
}
