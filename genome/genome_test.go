package genome

import (
	"math/rand"
	"testing"
)

func TestWithNNWeightsSegmentLayout(t *testing.T) {
	g := WithNNWeights(make([]float32, 212))

	if got := len(g.Data()); got != 256 {
		t.Fatalf("total length = %d, want 256", got)
	}

	wantSegments := [numSegments][2]int{
		{0, 212}, {212, 228}, {228, 236}, {236, 244}, {244, 248}, {248, 252}, {252, 256},
	}
	for i, want := range wantSegments {
		if g.segments[i] != want {
			t.Errorf("segment %d = %v, want %v", i, g.segments[i], want)
		}
	}
}

func TestSegmentDataReturnsCorrectSlices(t *testing.T) {
	g := WithNNWeights(make([]float32, 212))
	for i := range g.data {
		g.data[i] = float32(i)
	}

	seg := g.SegmentData(SegHomeostasis)
	if len(seg) != 8 {
		t.Fatalf("len(SegHomeostasis) = %d, want 8", len(seg))
	}
	if seg[0] != 228 {
		t.Errorf("SegHomeostasis[0] = %v, want 228", seg[0])
	}
}

func TestSetSegmentDataRoundTrip(t *testing.T) {
	g := WithNNWeights(make([]float32, 212))
	v := []float32{1, 2, 3, 4}
	g.SetSegmentData(SegReproduction, v)

	got := g.SegmentData(SegReproduction)
	for i, want := range v {
		if got[i] != want {
			t.Errorf("SegReproduction[%d] = %v, want %v", i, got[i], want)
		}
	}
}

func TestMutationIsNoopAtZeroRates(t *testing.T) {
	g := WithNNWeights(make([]float32, 212))
	for i := range g.data {
		g.data[i] = float32(i) * 0.01
	}
	before := append([]float32(nil), g.data...)

	rng := rand.New(rand.NewSource(1))
	g.Mutate(rng, MutationRates{})

	for i, want := range before {
		if g.data[i] != want {
			t.Fatalf("element %d changed under zero mutation rates: %v != %v", i, g.data[i], want)
		}
	}
}

func TestMutationRespectsValueLimit(t *testing.T) {
	// Every element takes the point band, so each out-of-range start value
	// must come back clamped. Elements no band touches are left as they
	// are (see TestMutationIsNoopAtZeroRates), so the band rate is raised
	// here rather than relying on default rates to hit every element.
	rates := DefaultMutationRates()
	rates.PointRate = 1
	rates.ResetRate = 0
	rates.ScaleRate = 0
	g := WithNNWeights(make([]float32, 16))
	for i := range g.data {
		g.data[i] = 10
	}

	rng := rand.New(rand.NewSource(42))
	g.Mutate(rng, rates)

	for i, v := range g.data {
		if v > rates.ValueLimit || v < -rates.ValueLimit {
			t.Errorf("element %d = %v exceeds value_limit %v", i, v, rates.ValueLimit)
		}
	}
}

func TestMutationIsDeterministicForFixedSeed(t *testing.T) {
	rates := DefaultMutationRates()

	a := WithNNWeights(make([]float32, 16))
	b := WithNNWeights(make([]float32, 16))
	for i := range a.data {
		a.data[i] = 0.5
		b.data[i] = 0.5
	}

	rngA := rand.New(rand.NewSource(123))
	rngB := rand.New(rand.NewSource(123))
	a.Mutate(rngA, rates)
	b.Mutate(rngB, rates)

	for i := range a.data {
		if a.data[i] != b.data[i] {
			t.Fatalf("element %d diverged: %v != %v", i, a.data[i], b.data[i])
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := WithNNWeights(make([]float32, 212))
	clone := g.Clone()
	clone.data[0] = 99

	if g.data[0] == 99 {
		t.Fatal("mutating clone affected original")
	}
}
