package world

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/alifesim/development"
	"github.com/pthm-cable/alifesim/genome"
	"github.com/pthm-cable/alifesim/metabolism"
	"github.com/pthm-cable/alifesim/metrics"
	"github.com/pthm-cable/alifesim/neuralnet"
)

// maybeReproduce runs the two-pass reproduction algorithm of spec.md §4.8:
// collect eligible parents, then spawn per eligible parent in index order,
// re-checking viability as side effects (energy deduction, agent-id
// exhaustion) may have cascaded earlier in the loop.
//
// Grounded on _examples/pthm-soup/game/simulation.go's collect-then-spawn
// idiom, generalized per
// _examples/original_source/.../world/lifecycle.rs's maybe_reproduce.
func (w *World) maybeReproduce() {
	if !w.cfg.EnableReproduction {
		return
	}
	cfg := w.cfg

	childAgents := cfg.AgentsPerOrganism / 2
	if cfg.ReproductionChildMinAgents > childAgents {
		childAgents = cfg.ReproductionChildMinAgents
	}

	var parentIndices []int
	for i, o := range w.organisms {
		if o.Alive &&
			o.Metabolic.Energy >= cfg.ReproductionMinEnergy &&
			o.BoundaryIntegrity >= cfg.ReproductionMinBoundary &&
			o.Maturity >= 1.0 {
			parentIndices = append(parentIndices, i)
		}
	}
	if len(parentIndices) == 0 {
		return
	}

	mode, _ := metabolism.ParseMode(cfg.MetabolismMode)

	for _, parentIdx := range parentIndices {
		if len(w.agents)+childAgents > MaxTotalAgents {
			break
		}
		remainingIDs := uint64(math.MaxUint32) - uint64(w.nextAgentID)
		if remainingIDs+1 < uint64(childAgents) {
			w.agentIDExhaustionsLastStep++
			w.totalAgentIDExhaustions++
			slog.Warn("agent_id_space_exhausted", "step", w.stepIndex, "total_exhaustion_events", w.totalAgentIDExhaustions)
			break
		}

		center := [2]float64{0, 0}
		if parentIdx < len(w.centers) {
			center = w.centers[parentIdx]
		}

		parent := &w.organisms[parentIdx]
		if !parent.Alive || parent.Metabolic.Energy < cfg.ReproductionEnergyCost {
			continue
		}
		parentGeneration := parent.Generation
		parentStableID := parent.StableID
		parentAncestor := parent.AncestorGenome.Clone()
		childGenome := parent.Genome.Clone()

		parent.Metabolic.Energy -= cfg.ReproductionEnergyCost

		if cfg.EnableEvolution {
			rates := genome.MutationRates{
				PointRate:  cfg.MutationPointRate,
				PointScale: cfg.MutationPointScale,
				ResetRate:  cfg.MutationResetRate,
				ScaleRate:  cfg.MutationScaleRate,
				ScaleMin:   cfg.MutationScaleMin,
				ScaleMax:   cfg.MutationScaleMax,
				ValueLimit: cfg.MutationValueLimit,
			}
			childGenome.Mutate(w.rng, rates)
		}

		var childNN neuralnet.NeuralNet
		childWeights := childGenome.NNWeights()
		if len(childWeights) == neuralnet.WeightCount {
			childNN = neuralnet.FromWeights(childWeights)
		} else {
			// Defensive only, per spec.md §9 open question (c): unreachable
			// under the fixed-length mutation operator, but the source falls
			// back to the parent's current network weights.
			childNN = neuralnet.FromWeights(parent.NN.ToWeights())
		}

		if len(w.organisms) >= math.MaxUint16 {
			break
		}
		childID := uint16(len(w.organisms))
		var childAgentIDs []uint32
		for k := 0; k < childAgents; k++ {
			theta := w.rng.Float64() * 2 * math.Pi
			radius := math.Sqrt(w.rng.Float64()) * cfg.ReproductionSpawnRadius
			pos := [2]float64{
				wrapCoord(center[0]+radius*math.Cos(theta), cfg.WorldSize),
				wrapCoord(center[1]+radius*math.Sin(theta), cfg.WorldSize),
			}
			id, ok := w.nextAgentIDChecked()
			if !ok {
				break
			}
			agent := Agent{ID: id, OrganismID: childID, Position: pos}
			agent.InternalState[2] = 1.0
			childAgentIDs = append(childAgentIDs, id)
			w.agents = append(w.agents, agent)
		}
		if len(childAgentIDs) == 0 {
			break
		}

		childMetabolic := metabolism.State{Energy: cfg.ReproductionEnergyCost, Waste: 0}
		var childEngine *metabolism.Engine
		if mode == metabolism.ModeGraph {
			eng := metabolism.NewGraph(childGenome.SegmentData(genome.SegMetabolic))
			childEngine = &eng
		}
		childDev := development.Decode(childGenome.SegmentData(genome.SegDevelopmental), cfg.GrowthImmatureMetabolicEfficiency)

		childStableID := w.nextStableID
		w.nextStableID++
		childGeneration := parentGeneration + 1

		child := Organism{
			ID:                childID,
			StableID:          childStableID,
			Generation:        childGeneration,
			Alive:             true,
			BoundaryIntegrity: 1.0,
			Metabolic:         childMetabolic,
			Genome:            childGenome,
			AncestorGenome:    parentAncestor,
			NN:                childNN,
			AgentIDs:          childAgentIDs,
			Maturity:          0.0,
			Engine:            childEngine,
			Development:       childDev,
			ParentStableID:    &parentStableID,
		}
		w.organisms = append(w.organisms, child)
		w.growScratchByOne()

		w.birthsLastStep++
		w.totalBirths++
		w.lineageEvents = append(w.lineageEvents, metrics.LineageEvent{
			Step:           w.stepIndex,
			ParentStableID: parentStableID,
			ChildStableID:  childStableID,
			Generation:     childGeneration,
		})
	}
}

// nextAgentIDChecked returns the next agent id and advances the counter, or
// false if doing so would overflow 32-bit space, per spec.md §5's
// exhaustion policy: never a panic, always a counted skip.
func (w *World) nextAgentIDChecked() (uint32, bool) {
	if w.nextAgentID == math.MaxUint32 {
		w.agentIDExhaustionsLastStep++
		w.totalAgentIDExhaustions++
		slog.Warn("agent_id_space_exhausted", "step", w.stepIndex, "total_exhaustion_events", w.totalAgentIDExhaustions)
		return 0, false
	}
	id := w.nextAgentID
	w.nextAgentID++
	return id, true
}

func (w *World) growScratchByOne() {
	w.neighborCountSum = append(w.neighborCountSum, 0)
	w.neighborAgentN = append(w.neighborAgentN, 0)
	w.sinX = append(w.sinX, 0)
	w.cosX = append(w.cosX, 0)
	w.sinY = append(w.sinY, 0)
	w.cosY = append(w.cosY, 0)
	w.homeostasisSum = append(w.homeostasisSum, 0)
	w.homeostasisAgentN = append(w.homeostasisAgentN, 0)
	w.centers = append(w.centers, [2]float64{0, 0})
}

func wrapCoord(v, size float64) float64 {
	r := math.Mod(v, size)
	if r < 0 {
		r += size
	}
	return r
}
