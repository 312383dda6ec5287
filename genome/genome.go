// Package genome implements the variable-length, segmented parameter vector
// that drives an organism's neural controller, metabolism, development, and
// reproduction — and its deterministic per-element mutation operator.
package genome

// Segment indices, matching the labeled layout spec.md §3/§4.1 describes.
const (
	SegNeuralWeights = iota
	SegMetabolic
	SegHomeostasis
	SegDevelopmental
	SegReproduction
	SegSensory
	SegEvolution
	numSegments
)

// segmentSizes gives the fixed size of every non-neural segment, in the
// order they follow the neural-weights segment. Confirmed against
// _examples/original_source/crates/digital-life-core/src/genome.rs's
// placeholder_sizes = [16, 8, 8, 4, 4, 4].
var segmentSizes = [numSegments - 1]int{16, 8, 8, 4, 4, 4}

// fixedSegmentTotal is the combined length of every non-neural segment
// (44 = 16+8+8+4+4+4), matching spec.md §4.1: "constructs a genome of
// length |w| + 44".
const fixedSegmentTotal = 44

// Genome is a dense vector of float32 parameters split into seven labeled
// segments, only the first of which (neural weights) is founder-initialized.
type Genome struct {
	data     []float32
	segments [numSegments][2]int // [start, end) per segment
}

// WithNNWeights constructs a genome whose segment 0 is w (copied) and whose
// remaining segments are zero-filled, per spec.md §4.1.
func WithNNWeights(w []float32) Genome {
	g := Genome{data: make([]float32, len(w)+fixedSegmentTotal)}
	copy(g.data, w)

	offset := len(w)
	g.segments[SegNeuralWeights] = [2]int{0, offset}
	for i, size := range segmentSizes {
		g.segments[i+1] = [2]int{offset, offset + size}
		offset += size
	}
	return g
}

// Clone returns a deep copy.
func (g Genome) Clone() Genome {
	out := Genome{segments: g.segments, data: make([]float32, len(g.data))}
	copy(out.data, g.data)
	return out
}

// Data returns the full underlying parameter vector.
func (g Genome) Data() []float32 { return g.data }

// NNWeights returns the neural-weights segment (segment 0).
func (g Genome) NNWeights() []float32 { return g.SegmentData(SegNeuralWeights) }

// SegmentData returns a read-only view of the given segment.
func (g Genome) SegmentData(segment int) []float32 {
	r := g.segments[segment]
	return g.data[r[0]:r[1]]
}

// SetSegmentData overwrites a segment in place. The length of v must equal
// the segment's existing length.
func (g *Genome) SetSegmentData(segment int, v []float32) {
	r := g.segments[segment]
	if len(v) != r[1]-r[0] {
		panic("genome: SetSegmentData length mismatch")
	}
	copy(g.data[r[0]:r[1]], v)
}
