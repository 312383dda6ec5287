package genome

import "math/rand"

// MutationRates configures the three mutually-exclusive per-element
// mutation bands spec.md §4.1 describes. The three probabilities need not
// sum to 1 — per spec.md §9 Open Question (a), the remaining probability
// mass is simply "no mutation" and is never renormalized.
type MutationRates struct {
	PointRate   float32
	PointScale  float32
	ResetRate   float32
	ScaleRate   float32
	ScaleMin    float32
	ScaleMax    float32
	ValueLimit  float32
}

// DefaultMutationRates matches the defaults recorded in
// _examples/original_source/crates/digital-life-core/src/genome.rs.
func DefaultMutationRates() MutationRates {
	return MutationRates{
		PointRate:  0.02,
		PointScale: 0.15,
		ResetRate:  0.002,
		ScaleRate:  0.002,
		ScaleMin:   0.8,
		ScaleMax:   1.2,
		ValueLimit: 2.0,
	}
}

// Mutate visits every element of the genome independently and applies at
// most one of three bands, per spec.md §4.1. Deterministic given rng's
// state and the genome's length.
func (g *Genome) Mutate(rng *rand.Rand, rates MutationRates) {
	for i, v := range g.data {
		r := rng.Float32()
		switch {
		case r < rates.PointRate:
			delta := (rng.Float32()*2 - 1) * rates.PointScale
			v = clamp(v+delta, rates.ValueLimit)
		case r < rates.PointRate+rates.ResetRate:
			v = 0
		case r < rates.PointRate+rates.ResetRate+rates.ScaleRate:
			factor := rates.ScaleMin + rng.Float32()*(rates.ScaleMax-rates.ScaleMin)
			v = clamp(v*factor, rates.ValueLimit)
		}
		g.data[i] = v
	}
}

func clamp(v, limit float32) float32 {
	switch {
	case v > limit:
		return limit
	case v < -limit:
		return -limit
	default:
		return v
	}
}
