// Package metabolism implements the per-organism (energy, waste) update,
// as a tagged variant rather than a virtual interface — per spec.md §9
// "Variant dispatch": Toy and Counter share world-level state, Graph
// carries per-organism parameters decoded from the genome, and callers
// interrogate the Mode tag to know which applies.
package metabolism

// Mode selects which variant an Engine runs.
type Mode int

const (
	ModeToy Mode = iota
	ModeCounter
	ModeGraph
)

// ParseMode maps the config string ("Toy", "Counter", "Graph") to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "Toy":
		return ModeToy, true
	case "Counter":
		return ModeCounter, true
	case "Graph":
		return ModeGraph, true
	default:
		return 0, false
	}
}

// State is an organism's metabolic pools: energy and waste.
type State struct {
	Energy float32
	Waste  float32
}

// Flux reports how much external resource an engine drew this step.
type Flux struct {
	ConsumedExternal float32
}

// Engine is the tagged-variant metabolism update. Toy/Counter fields are
// shared world-level parameters; Graph is set only when Mode == ModeGraph,
// decoded per-organism from genome segment 1.
type Engine struct {
	Mode Mode

	ToyGainRate         float32
	ToyWasteAccrualRate float32
	ToyWasteDrainRate   float32

	CounterEnergyIncrement float32
	CounterWasteIncrement  float32

	Graph *GraphParams
}

// NewToy builds a Toy-mode world-level engine.
func NewToy(gainRate, wasteAccrualRate, wasteDrainRate float32) Engine {
	return Engine{Mode: ModeToy, ToyGainRate: gainRate, ToyWasteAccrualRate: wasteAccrualRate, ToyWasteDrainRate: wasteDrainRate}
}

// NewCounter builds a Counter-mode world-level engine, mainly for tests.
func NewCounter(energyIncrement, wasteIncrement float32) Engine {
	return Engine{Mode: ModeCounter, CounterEnergyIncrement: energyIncrement, CounterWasteIncrement: wasteIncrement}
}

// NewGraph builds a Graph-mode engine with per-organism parameters decoded
// from a genome's metabolic segment (16 floats).
func NewGraph(segment []float32) Engine {
	g := DecodeGraphParams(segment)
	return Engine{Mode: ModeGraph, Graph: &g}
}

// Step advances state by one tick given the externally sampled resource
// value, returning how much external resource to draw from the field.
// ConsumedExternal is always >= 0.
func (e Engine) Step(state *State, external float32, dt float32) Flux {
	switch e.Mode {
	case ModeToy:
		return e.stepToy(state, external, dt)
	case ModeCounter:
		return e.stepCounter(state, dt)
	case ModeGraph:
		return e.Graph.step(state, external, dt)
	default:
		return Flux{}
	}
}

func (e Engine) stepToy(state *State, external float32, dt float32) Flux {
	gain := e.ToyGainRate * external * dt
	state.Energy += gain

	wasteGain := e.ToyWasteAccrualRate * state.Energy * dt
	state.Waste += wasteGain

	loss := e.ToyWasteDrainRate * state.Waste * dt
	state.Energy -= loss
	if state.Energy < 0 {
		state.Energy = 0
	}
	if state.Waste < 0 {
		state.Waste = 0
	}

	consumed := gain
	if consumed < 0 {
		consumed = 0
	}
	if consumed > external {
		consumed = external
	}
	return Flux{ConsumedExternal: consumed}
}

func (e Engine) stepCounter(state *State, dt float32) Flux {
	state.Energy += e.CounterEnergyIncrement * dt
	if state.Energy < 0 {
		state.Energy = 0
	}
	state.Waste += e.CounterWasteIncrement * dt
	if state.Waste < 0 {
		state.Waste = 0
	}
	return Flux{}
}
