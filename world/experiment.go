package world

import (
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/alifesim/metrics"
)

// TryRunExperiment runs steps ticks, sampling aggregate metrics every
// sample_every steps plus the final step, per spec.md §6's experiment
// driver interface. No sample is taken before the first tick runs.
func (w *World) TryRunExperiment(steps uint64, sampleEvery int) (metrics.RunSummary, error) {
	return w.TryRunExperimentWithSnapshots(steps, sampleEvery, nil)
}

// TryRunExperimentWithSnapshots additionally records per-organism
// snapshots at the given step indices.
func (w *World) TryRunExperimentWithSnapshots(steps uint64, sampleEvery int, snapshotSteps []uint64) (metrics.RunSummary, error) {
	if sampleEvery <= 0 {
		return metrics.RunSummary{}, &ExperimentError{Err: ErrInvalidSampleEvery}
	}
	if steps > MaxExperimentSteps {
		return metrics.RunSummary{}, &ExperimentError{Err: ErrTooManySteps, Max: MaxExperimentSteps, Actual: int(steps)}
	}
	expectedSamples := 0
	if steps > 0 {
		expectedSamples = int((steps-1)/uint64(sampleEvery)) + 1
	}
	if expectedSamples > MaxExperimentSamples {
		return metrics.RunSummary{}, &ExperimentError{Err: ErrTooManySamples, Max: MaxExperimentSamples, Actual: expectedSamples}
	}

	snapshotSet := make(map[uint64]bool, len(snapshotSteps))
	for _, s := range snapshotSteps {
		snapshotSet[s] = true
	}

	summary := metrics.NewRunSummary(steps, sampleEvery)

	// This run's own lifespans/lineage events start empty, so a World
	// reused across multiple experiment runs reports only what happened
	// during this call, not its whole lifetime.
	w.lifespans = nil
	w.lineageEvents = nil
	birthsBefore := w.totalBirths

	for i := uint64(0); i < steps; i++ {
		w.Step()

		if w.stepIndex%uint64(sampleEvery) == 0 || w.stepIndex == steps {
			summary.Samples = append(summary.Samples, w.collectStepMetrics())
		}
		if snapshotSet[w.stepIndex] {
			summary.OrganismSnapshots = append(summary.OrganismSnapshots, w.collectOrganismSnapshots())
		}
	}

	summary.FinalAliveCount = w.AliveOrganismCount()
	summary.Lifespans = append(summary.Lifespans, w.lifespans...)
	summary.TotalReproductionEvents = w.totalBirths - birthsBefore
	summary.LineageEvents = append(summary.LineageEvents, w.lineageEvents...)
	return summary, nil
}

func (w *World) agentIndexMap() map[uint32]int {
	m := make(map[uint32]int, len(w.agents))
	for i, a := range w.agents {
		m[a.ID] = i
	}
	return m
}

func (w *World) collectStepMetrics() metrics.StepMetrics {
	agentIdx := w.agentIndexMap()

	var samples []metrics.OrganismSample
	for _, org := range w.organisms {
		if !org.Alive {
			continue
		}
		sample := metrics.OrganismSample{
			Energy:            org.Metabolic.Energy,
			Waste:             org.Metabolic.Waste,
			BoundaryIntegrity: org.BoundaryIntegrity,
			Age:               org.AgeSteps,
			Maturity:          org.Maturity,
			Generation:        org.Generation,
			GenomeDrift:       genomeDrift(org.Genome.NNWeights(), org.AncestorGenome.NNWeights()),
			CurrentNNWeights:  org.Genome.NNWeights(),
		}
		for _, agentID := range org.AgentIDs {
			idx, ok := agentIdx[agentID]
			if !ok {
				continue
			}
			a := w.agents[idx]
			sample.AgentPositions = append(sample.AgentPositions, a.Position)
			sample.AgentInternalState = append(sample.AgentInternalState, a.InternalState)
		}
		samples = append(samples, sample)
	}

	return metrics.CollectStepMetrics(metrics.StepInputs{
		Step:                    w.stepIndex,
		Organisms:               samples,
		ResourceTotal:           w.field.Total(),
		BirthCount:              w.birthsLastStep,
		DeathCount:              w.deathsLastStep,
		PopulationSize:          len(w.organisms),
		WorldSize:               w.cfg.WorldSize,
		AgentIDExhaustionEvents: uint64(w.agentIDExhaustionsLastStep),
	})
}

func (w *World) collectOrganismSnapshots() metrics.SnapshotFrame {
	frame := metrics.SnapshotFrame{Step: w.stepIndex}
	for _, org := range w.organisms {
		if !org.Alive {
			continue
		}
		center := [2]float64{0, 0}
		if int(org.ID) < len(w.centers) {
			center = w.centers[org.ID]
		}
		frame.Organisms = append(frame.Organisms, metrics.OrganismSnapshot{
			StableID:          org.StableID,
			Generation:        org.Generation,
			AgeSteps:          org.AgeSteps,
			Energy:            org.Metabolic.Energy,
			Waste:             org.Metabolic.Waste,
			BoundaryIntegrity: org.BoundaryIntegrity,
			Maturity:          org.Maturity,
			CenterX:           center[0],
			CenterY:           center[1],
			NAgents:           len(org.AgentIDs),
		})
	}
	return frame
}

// genomeDrift is the mean absolute per-weight deviation of the current
// neural weights from the founder ancestor's, via gonum's L1 distance
// (floats.Distance(..., 1)), mirroring metrics.l2Distance's float64
// conversion idiom one package over.
func genomeDrift(current, ancestor []float32) float32 {
	n := len(current)
	if len(ancestor) < n {
		n = len(ancestor)
	}
	fc := make([]float64, n)
	fa := make([]float64, n)
	for i := 0; i < n; i++ {
		fc[i] = float64(current[i])
		fa[i] = float64(ancestor[i])
	}
	return float32(floats.Distance(fc, fa, 1) / 212)
}
