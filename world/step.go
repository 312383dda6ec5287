package world

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/alifesim/spatial"
)

// terminalBoundaryThreshold is the boundary_integrity level at or below
// which an organism is dead, per spec.md §4.4's boundary phase.
func (w *World) terminalBoundaryThreshold() float32 {
	if w.cfg.BoundaryCollapseThreshold > w.cfg.DeathBoundaryThreshold {
		return w.cfg.BoundaryCollapseThreshold
	}
	return w.cfg.DeathBoundaryThreshold
}

// Step runs one tick: the seven ordered phases of spec.md §4.7. Phase
// boundaries are synchronization points — each phase reads only state
// committed by its predecessors.
func (w *World) Step() {
	w.stepIndex++
	w.birthsLastStep = 0
	w.deathsLastStep = 0
	w.agentIDExhaustionsLastStep = 0
	terminal := w.terminalBoundaryThreshold()

	w.perf.StartTick()

	w.perf.StartPhase(PhaseSpatialIndex)
	tree := w.buildIndexActive()

	w.perf.StartPhase(PhaseNNQuery)
	deltas := w.stepNNQuery(tree)

	w.perf.StartPhase(PhaseAgentState)
	w.stepAgentState(deltas)

	w.perf.StartPhase(PhaseBoundary)
	w.stepBoundary(terminal)

	w.perf.StartPhase(PhaseMetabolism)
	w.stepMetabolism(terminal)

	w.perf.StartPhase(PhaseGrowthCrowding)
	w.stepGrowthAndCrowding()

	w.perf.StartPhase(PhaseReproduction)
	w.maybeReproduce()

	w.perf.StartPhase(PhaseCompaction)
	deadCount := 0
	for _, o := range w.organisms {
		if !o.Alive {
			deadCount++
		}
	}
	orgCap := len(w.organisms)
	if orgCap < 1 {
		orgCap = 1
	}
	if deadCount > 0 && (w.cfg.CompactionIntervalSteps > 0 && w.stepIndex%w.cfg.CompactionIntervalSteps == 0 || deadCount*4 >= orgCap) {
		w.pruneDeadEntities()
	}

	w.perf.StartPhase(PhaseEnvironment)
	w.stepEnvironment(tree)

	w.perf.EndTick()

	if w.cfg.LogInterval > 0 && w.stepIndex%uint64(w.cfg.LogInterval) == 0 {
		slog.Info("step_summary", "metrics", w.collectStepMetrics())
	}
}

func (w *World) resetScratchSums() {
	for i := range w.organisms {
		w.neighborCountSum[i] = 0
		w.neighborAgentN[i] = 0
		w.sinX[i] = 0
		w.cosX[i] = 0
		w.sinY[i] = 0
		w.cosY[i] = 0
		w.homeostasisSum[i] = 0
		w.homeostasisAgentN[i] = 0
	}
}

// stepAgentState is phase 3, overwriting internal_state[2] with the
// organism's PREVIOUS tick boundary_integrity (deliberate one-step lag,
// per spec.md §9 open question (b)), integrating motion, decaying and
// updating homeostatic pools, and accumulating per-organism aggregates.
func (w *World) stepAgentState(deltas [][4]float32) {
	w.resetScratchSums()
	cfg := w.cfg
	dt := cfg.DT
	dt32 := cfg.Derived.DT32

	for i := range w.agents {
		a := &w.agents[i]
		org := &w.organisms[a.OrganismID]
		if !org.Alive {
			continue
		}
		delta := deltas[i]

		a.InternalState[2] = org.BoundaryIntegrity

		if cfg.EnableResponse {
			a.Velocity[0] += float64(delta[0]) * dt
			a.Velocity[1] += float64(delta[1]) * dt
			speed := math.Hypot(a.Velocity[0], a.Velocity[1])
			if speed > cfg.MaxSpeed && speed > 0 {
				scale := cfg.MaxSpeed / speed
				a.Velocity[0] *= scale
				a.Velocity[1] *= scale
			}
		}

		a.Position[0] = wrapCoord(a.Position[0]+a.Velocity[0]*dt, cfg.WorldSize)
		a.Position[1] = wrapCoord(a.Position[1]+a.Velocity[1]*dt, cfg.WorldSize)

		for k := 0; k < 2; k++ {
			a.InternalState[k] -= cfg.HomeostasisDecayRate * dt32
			if a.InternalState[k] < 0 {
				a.InternalState[k] = 0
			}
		}
		if cfg.EnableHomeostasis {
			a.InternalState[0] += delta[2] * dt32
			a.InternalState[1] += delta[3] * dt32
			for k := 0; k < 2; k++ {
				if a.InternalState[k] < 0 {
					a.InternalState[k] = 0
				}
				if a.InternalState[k] > 1 {
					a.InternalState[k] = 1
				}
			}
		}

		orgIdx := int(a.OrganismID)
		w.homeostasisSum[orgIdx] += float64(a.InternalState[0])
		w.homeostasisAgentN[orgIdx]++

		thetaX := 2 * math.Pi * a.Position[0] / cfg.WorldSize
		thetaY := 2 * math.Pi * a.Position[1] / cfg.WorldSize
		w.sinX[orgIdx] += math.Sin(thetaX)
		w.cosX[orgIdx] += math.Cos(thetaX)
		w.sinY[orgIdx] += math.Sin(thetaY)
		w.cosY[orgIdx] += math.Cos(thetaY)
	}
}

// stepBoundary is phase 4.
func (w *World) stepBoundary(terminal float32) {
	if !w.cfg.EnableBoundaryMaintenance {
		return
	}
	cfg := w.cfg
	dt32 := cfg.Derived.DT32

	for i := range w.organisms {
		org := &w.organisms[i]
		if !org.Alive {
			continue
		}

		homeostasisFactor := float32(0.5)
		if w.homeostasisAgentN[i] > 0 {
			homeostasisFactor = float32(w.homeostasisSum[i] / float64(w.homeostasisAgentN[i]))
		}
		devBoundaryFactor := float32(1.0)
		if cfg.EnableGrowth {
			devBoundaryFactor, _, _ = org.Development.StageFactors(org.Maturity)
		}

		energy := org.Metabolic.Energy
		waste := org.Metabolic.Waste

		viabilityDeficit := cfg.MetabolicViabilityFloor - energy
		if viabilityDeficit < 0 {
			viabilityDeficit = 0
		}
		decay := cfg.BoundaryDecayBaseRate + cfg.BoundaryDecayEnergyScale*(viabilityDeficit+waste*cfg.BoundaryWastePressureScale)

		repairBase := energy - waste*cfg.BoundaryWastePressureScale*cfg.BoundaryRepairWastePenaltyScale
		if repairBase < 0 {
			repairBase = 0
		}
		repair := repairBase * cfg.BoundaryRepairRate * homeostasisFactor * devBoundaryFactor

		org.BoundaryIntegrity = clamp01(org.BoundaryIntegrity + (repair-decay)*dt32)
		if org.BoundaryIntegrity <= terminal {
			w.markDead(i)
		}
	}
}

// stepMetabolism is phase 5.
func (w *World) stepMetabolism(terminal float32) {
	cfg := w.cfg
	w.computeCenters()
	if !cfg.EnableMetabolism {
		return
	}
	dt32 := cfg.Derived.DT32

	for i := range w.organisms {
		org := &w.organisms[i]
		if !org.Alive {
			continue
		}
		center := w.centers[i]
		external := w.field.Get(center[0], center[1])

		oldEnergy := org.Metabolic.Energy
		eng := org.engine(w.worldEngine)
		flux := eng.Step(&org.Metabolic, external, dt32)

		delta := org.Metabolic.Energy - oldEnergy
		if delta > 0 {
			var metEff float32
			if cfg.EnableGrowth {
				_, _, metEff = org.Development.StageFactors(org.Maturity)
			} else {
				metEff = cfg.GrowthImmatureMetabolicEfficiency + org.Maturity*(1-cfg.GrowthImmatureMetabolicEfficiency)
			}
			growthFactor := metEff * cfg.MetabolismEfficiencyMultiplier
			org.Metabolic.Energy = oldEnergy + delta*growthFactor
		}
		if org.Metabolic.Energy < 0 {
			org.Metabolic.Energy = 0
		}

		w.field.Take(center[0], center[1], flux.ConsumedExternal)

		if org.Metabolic.Energy <= cfg.DeathEnergyThreshold || org.BoundaryIntegrity <= terminal {
			w.markDead(i)
		}
	}
}

// stepGrowthAndCrowding is phase 6.
func (w *World) stepGrowthAndCrowding() {
	cfg := w.cfg
	dt32 := cfg.Derived.DT32

	for i := range w.organisms {
		org := &w.organisms[i]
		if !org.Alive {
			continue
		}

		org.AgeSteps++
		if org.AgeSteps > cfg.MaxOrganismAgeSteps {
			w.markDead(i)
			continue
		}

		if cfg.EnableGrowth && org.Maturity < 1 {
			org.Maturity += org.Development.MaturationRateModifier() / float32(cfg.GrowthMaturationSteps)
			if org.Maturity > 1 {
				org.Maturity = 1
			}
		}

		if w.neighborAgentN[i] > 0 {
			avgNeighborCount := w.neighborCountSum[i] / float64(w.neighborAgentN[i])
			if float32(avgNeighborCount) > cfg.CrowdingNeighborThreshold {
				excess := float32(avgNeighborCount) - cfg.CrowdingNeighborThreshold
				org.BoundaryIntegrity -= excess * cfg.CrowdingBoundaryDecay * dt32
				if org.BoundaryIntegrity < 0 {
					org.BoundaryIntegrity = 0
				}
			}
		}
	}
}

// stepEnvironment is phase 7's environment sub-step, run after
// reproduction/compaction.
func (w *World) stepEnvironment(tree *spatial.Tree) {
	cfg := w.cfg

	if cfg.EnableShamProcess {
		w.runShamProcess(tree)
	}

	if cfg.EnvironmentShiftStep > 0 && w.stepIndex == cfg.EnvironmentShiftStep {
		w.currentResourceRate = cfg.EnvironmentShiftResourceRate
	}
	if cfg.EnvironmentCyclePeriod > 0 {
		phase := (w.stepIndex / cfg.EnvironmentCyclePeriod) % 2
		if phase == 0 {
			w.currentResourceRate = cfg.ResourceRegenerationRate
		} else {
			w.currentResourceRate = cfg.EnvironmentCycleLowRate
		}
	}
	if w.currentResourceRate > 0 {
		w.field.Regenerate(w.currentResourceRate * cfg.Derived.DT32)
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
