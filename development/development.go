// Package development implements the per-organism developmental program:
// a maturity-indexed scaling of boundary, sensing, and metabolic factors,
// decoded once from the genome at organism creation.
//
// Grounded on spec.md §4.4 and the teacher's stage-factor idiom in
// traits/growth.go (age-gated trait multipliers), generalized from the
// teacher's discrete growth stages to the spec's continuous maturity curve.
package development

import "math"

// SegmentSize is how many genome floats a Program decodes from.
const SegmentSize = 8

// Program holds the decoded developmental parameters for one organism.
type Program struct {
	maturationRateModifier float32
	boundaryShape          float32
	sensingShape           float32
	metabolicShape         float32
	immatureEfficiencyFloor float32
}

// Decode reads a Program from exactly SegmentSize genome floats, applying a
// positive transform (softplus) so every shape parameter lands in (0, +inf)
// regardless of the raw genome value's sign, per spec.md §4.4.
func Decode(segment []float32, immatureEfficiencyFloor float32) Program {
	if len(segment) != SegmentSize {
		panic("development: Decode needs exactly SegmentSize values")
	}
	return Program{
		maturationRateModifier: positiveTransform(segment[0]),
		boundaryShape:           positiveTransform(segment[1]),
		sensingShape:            positiveTransform(segment[2]),
		metabolicShape:          positiveTransform(segment[3]),
		immatureEfficiencyFloor: immatureEfficiencyFloor,
	}
}

func positiveTransform(x float32) float32 {
	// softplus(x) = ln(1+e^x), strictly positive for any finite x.
	return float32(math.Log1p(math.Exp(float64(x))))
}

// MaturationRateModifier scales how fast maturity advances per step, per
// spec.md §4.7's growth phase: maturity += modifier/growth_maturation_steps.
func (p Program) MaturationRateModifier() float32 {
	return p.maturationRateModifier
}

// StageFactors returns (boundary_factor, sensing_factor,
// metabolic_efficiency_factor) for the given maturity in [0,1]. Every
// factor equals 1 at maturity=1. At maturity=0, metabolic efficiency is at
// least immatureEfficiencyFloor; boundary and sensing factors approach 0.
func (p Program) StageFactors(maturity float32) (boundaryFactor, sensingFactor, metabolicEfficiencyFactor float32) {
	if maturity < 0 {
		maturity = 0
	}
	if maturity > 1 {
		maturity = 1
	}
	boundaryFactor = smoothRamp(maturity, p.boundaryShape)
	sensingFactor = smoothRamp(maturity, p.sensingShape)

	floor := p.immatureEfficiencyFloor
	if floor < 0 {
		floor = 0
	}
	if floor > 1 {
		floor = 1
	}
	metabolicEfficiencyFactor = floor + (1-floor)*smoothRamp(maturity, p.metabolicShape)
	return
}

// smoothRamp maps maturity in [0,1] to a monotone curve in [0,1] with
// smoothRamp(0, shape) = 0 and smoothRamp(1, shape) = 1 for any positive
// shape; shape==1 is linear, shape>1 bows the curve toward late maturation,
// shape<1 toward early maturation.
func smoothRamp(maturity, shape float32) float32 {
	if shape <= 0 {
		shape = 1
	}
	return float32(math.Pow(float64(maturity), float64(shape)))
}
