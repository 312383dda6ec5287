package world

import "log/slog"

// markDead marks an organism dead, per spec.md §4.9. Idempotent.
func (w *World) markDead(orgID int) {
	org := &w.organisms[orgID]
	if !org.Alive {
		return
	}
	org.Alive = false
	org.BoundaryIntegrity = 0
	w.lifespans = append(w.lifespans, org.AgeSteps)
	w.deathsLastStep++
	w.totalDeaths++

	for _, agentID := range org.AgentIDs {
		if idx := w.agentIndexByID(agentID); idx >= 0 {
			w.agents[idx].Velocity = [2]float64{0, 0}
		}
	}
}

func (w *World) agentIndexByID(id uint32) int {
	for i, a := range w.agents {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// pruneDeadEntities compacts organism/agent state, dropping dead organisms
// and their agents, remapping every surviving agent's organism_id, and
// resizing per-organism scratch aggregates. Stable order of survivors is
// preserved, per spec.md §4.9 and §5's ordering guarantees.
//
// Grounded on _examples/pthm-soup/game/lifecycle.go's two-pass
// collect-then-remove idiom, generalized per
// _examples/original_source/.../world/lifecycle.rs's prune_dead_entities
// (build remap while filtering dead organisms, then remap agents, then
// rebuild agent_ids per surviving organism).
func (w *World) pruneDeadEntities() {
	before := len(w.organisms)
	remap := make([]int, len(w.organisms))
	survivors := make([]Organism, 0, len(w.organisms))
	for i, org := range w.organisms {
		if !org.Alive {
			remap[i] = -1
			continue
		}
		remap[i] = len(survivors)
		org.ID = uint16(len(survivors))
		org.AgentIDs = nil // rebuilt below from the remapped agent slice
		survivors = append(survivors, org)
	}

	survivingAgents := make([]Agent, 0, len(w.agents))
	for _, a := range w.agents {
		newOrgIdx := remap[a.OrganismID]
		if newOrgIdx < 0 {
			continue
		}
		a.OrganismID = uint16(newOrgIdx)
		survivingAgents = append(survivingAgents, a)
		survivors[newOrgIdx].AgentIDs = append(survivors[newOrgIdx].AgentIDs, a.ID)
	}

	w.organisms = survivors
	w.agents = survivingAgents
	w.resizeScratch()

	slog.Info("compaction",
		"step", w.stepIndex,
		"organisms_before", before,
		"organisms_after", len(survivors),
		"agents_after", len(survivingAgents),
	)
}
