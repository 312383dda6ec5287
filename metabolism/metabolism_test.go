package metabolism

import "testing"

func TestParseMode(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Mode
		ok   bool
	}{
		{"toy", "Toy", ModeToy, true},
		{"counter", "Counter", ModeCounter, true},
		{"graph", "Graph", ModeGraph, true},
		{"bogus", "Bogus", 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := ParseMode(c.in)
			if ok != c.ok || (ok && got != c.want) {
				t.Errorf("ParseMode(%q) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
			}
		})
	}
}

func TestToyGainsEnergyFromExternal(t *testing.T) {
	e := NewToy(1.0, 0, 0)
	state := State{}
	flux := e.Step(&state, 2.0, 0.5)

	if state.Energy <= 0 {
		t.Fatalf("Energy = %v, want > 0", state.Energy)
	}
	if flux.ConsumedExternal <= 0 {
		t.Fatalf("ConsumedExternal = %v, want > 0", flux.ConsumedExternal)
	}
}

func TestToyConsumedNeverExceedsExternal(t *testing.T) {
	e := NewToy(10.0, 0, 0)
	state := State{}
	flux := e.Step(&state, 1.0, 1.0)

	if flux.ConsumedExternal > 1.0 {
		t.Fatalf("ConsumedExternal = %v, want <= external (1.0)", flux.ConsumedExternal)
	}
}

func TestToyWasteAccretesFromEnergyThenDrainsEnergy(t *testing.T) {
	e := NewToy(1.0, 0.5, 0.5)
	state := State{Energy: 4}
	e.Step(&state, 0, 1.0)

	if state.Waste <= 0 {
		t.Fatalf("Waste = %v, want > 0 (accretes from energy)", state.Waste)
	}
}

func TestToyEnergyNeverGoesNegative(t *testing.T) {
	e := NewToy(0, 0, 10.0)
	state := State{Energy: 0, Waste: 5}
	e.Step(&state, 0, 1.0)

	if state.Energy < 0 {
		t.Fatalf("Energy = %v, want >= 0", state.Energy)
	}
}

func TestCounterAppliesFixedIncrements(t *testing.T) {
	e := NewCounter(1.0, 0.5)
	state := State{}
	e.Step(&state, 100, 1.0)

	if state.Energy != 1.0 {
		t.Fatalf("Energy = %v, want 1.0", state.Energy)
	}
	if state.Waste != 0.5 {
		t.Fatalf("Waste = %v, want 0.5", state.Waste)
	}
}

func TestCounterConsumesNothingExternal(t *testing.T) {
	e := NewCounter(1.0, 1.0)
	state := State{}
	flux := e.Step(&state, 50, 1.0)

	if flux.ConsumedExternal != 0 {
		t.Fatalf("ConsumedExternal = %v, want 0", flux.ConsumedExternal)
	}
}

func TestGraphZeroWeightsAreInert(t *testing.T) {
	segment := make([]float32, 16)
	e := NewGraph(segment)
	state := State{Energy: 1, Waste: 1}
	flux := e.Step(&state, 5, 1.0)

	if state.Energy != 1 || state.Waste != 1 {
		t.Fatalf("state changed under zero weights: %+v", state)
	}
	if flux.ConsumedExternal != 0 {
		t.Fatalf("ConsumedExternal = %v, want 0", flux.ConsumedExternal)
	}
}

func TestGraphConsumedExternalNeverExceedsExternalOrNegative(t *testing.T) {
	segment := make([]float32, 16)
	for i := range segment {
		segment[i] = 10 // saturates through tanh to ~1
	}
	e := NewGraph(segment)
	state := State{Energy: 1, Waste: 1}
	flux := e.Step(&state, 3.0, 1.0)

	if flux.ConsumedExternal < 0 || flux.ConsumedExternal > 3.0 {
		t.Fatalf("ConsumedExternal = %v, want in [0, 3.0]", flux.ConsumedExternal)
	}
}

func TestGraphWasteNeverGoesNegative(t *testing.T) {
	segment := make([]float32, 16)
	// Row 1 (waste) all strongly negative so the waste delta is large negative.
	for j := 4; j < 8; j++ {
		segment[j] = -10
	}
	e := NewGraph(segment)
	state := State{Energy: 1, Waste: 0.01}
	e.Step(&state, 0, 1.0)

	if state.Waste < 0 {
		t.Fatalf("Waste = %v, want >= 0", state.Waste)
	}
}

func TestDecodeGraphParamsPanicsOnWrongLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on wrong-length segment")
		}
	}()
	DecodeGraphParams(make([]float32, 8))
}
