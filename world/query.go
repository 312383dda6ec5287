package world

import (
	"math"

	"github.com/pthm-cable/alifesim/spatial"
)

// buildIndexActive is phase 1: bulk-load a spatial index over only those
// agents whose organism is alive.
func (w *World) buildIndexActive() *spatial.Tree {
	points := make([]spatial.Point, 0, len(w.agents))
	for _, a := range w.agents {
		if w.organisms[a.OrganismID].Alive {
			points = append(points, spatial.Point{X: a.Position[0], Y: a.Position[1], ID: a.ID})
		}
	}
	return spatial.BuildIndexActive(points, w.cfg.WorldSize)
}

// stepNNQuery is phase 2: for each alive-organism agent, sense neighbors,
// assemble the 8-vector input, and run the organism's neural controller.
// Dead-organism agents get a zero delta.
func (w *World) stepNNQuery(tree *spatial.Tree) [][4]float32 {
	cfg := w.cfg
	deltas := make([][4]float32, len(w.agents))

	for i := range w.agents {
		a := &w.agents[i]
		org := &w.organisms[a.OrganismID]
		if !org.Alive {
			continue
		}

		effectiveRadius := w.effectiveSensingRadius(org)
		neighborCount := tree.CountNeighbors(a.Position[0], a.Position[1], effectiveRadius, a.ID)

		orgIdx := int(a.OrganismID)
		w.neighborCountSum[orgIdx] += float64(neighborCount)
		w.neighborAgentN[orgIdx]++

		input := [8]float32{
			float32(a.Position[0] / cfg.WorldSize),
			float32(a.Position[1] / cfg.WorldSize),
			float32(a.Velocity[0] / cfg.MaxSpeed),
			float32(a.Velocity[1] / cfg.MaxSpeed),
			a.InternalState[0],
			a.InternalState[1],
			a.InternalState[2],
			float32(float64(neighborCount) / cfg.NeighborNorm),
		}
		deltas[i] = org.NN.Forward(input)
	}
	return deltas
}

// effectiveSensingRadius is the organism's sensing radius, diminished by its
// developmental sensing factor when growth is enabled, per
// world/lifecycle.rs's effective_sensing_radius. With enable_growth=false,
// stage factors are never consulted and the radius is undiminished,
// matching a newly-born, permanently-immature organism's full sensing.
func (w *World) effectiveSensingRadius(org *Organism) float64 {
	sensingFactor := float32(1.0)
	if w.cfg.EnableGrowth {
		_, sensingFactor, _ = org.Development.StageFactors(org.Maturity)
	}
	return w.cfg.SensingRadius * float64(sensingFactor)
}

// computeCenters recomputes each alive organism's toroidal mean agent
// position from the sine/cosine sums accumulated in stepAgentState, per
// spec.md §9's toroidal-mean reduction.
func (w *World) computeCenters() {
	cfg := w.cfg
	for i := range w.organisms {
		if !w.organisms[i].Alive {
			continue
		}
		w.centers[i] = [2]float64{
			toroidalMeanCoord(w.sinX[i], w.cosX[i], cfg.WorldSize),
			toroidalMeanCoord(w.sinY[i], w.cosY[i], cfg.WorldSize),
		}
	}
}

// toroidalMeanCoord reduces a set of sin/cos sums to a single coordinate
// via atan2, per spec.md §9: direct averaging of wrapped coordinates is
// wrong. The zero-sum edge case (no contributions, or perfectly
// symmetric contributions) returns exactly 0.0, matching atan2(0,0)'s
// well-defined value rather than NaN.
func toroidalMeanCoord(sinSum, cosSum, worldSize float64) float64 {
	angle := math.Atan2(sinSum, cosSum)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return (angle / (2 * math.Pi)) * worldSize
}

// runShamProcess re-queries the spatial index over every live agent and
// discards the result. It exists only because spec.md's ambient config
// carries enable_sham_process as a feature flag the core must honor by
// doing nothing useful with it — a deliberately inert phase, grounded on
// world/lifecycle.rs's step_environment_phase sham loop.
func (w *World) runShamProcess(tree *spatial.Tree) {
	var shamSum float64
	for _, a := range w.agents {
		org := &w.organisms[a.OrganismID]
		if !org.Alive {
			continue
		}
		effectiveRadius := w.effectiveSensingRadius(org)
		shamSum += float64(tree.CountNeighbors(a.Position[0], a.Position[1], effectiveRadius, a.ID))
	}
	_ = shamSum
}
