package metabolism

import "math"

// graphNodes is the fixed node set a Graph engine's edges connect:
// energy, waste, the sampled external resource value, and a constant bias.
const graphNodes = 4

// GraphParams is a per-organism signed-weight graph over {energy, waste,
// external, bias}, decoded once from the genome's metabolic segment (16
// floats) at organism creation. Row i gives the coefficients feeding output
// i; row 0 drives the energy delta, row 1 the waste delta, row 2 the amount
// drawn from the external resource. Row 3 is decoded but not read, so every
// value in the segment still participates in the decode.
type GraphParams struct {
	weights [3][graphNodes]float32
}

// DecodeGraphParams reads exactly 16 values, squashing each through tanh so
// every edge weight lands in [-1, 1] regardless of the raw genome value's
// range.
func DecodeGraphParams(segment []float32) GraphParams {
	if len(segment) != graphNodes*graphNodes {
		panic("metabolism: DecodeGraphParams needs exactly 16 values")
	}
	var g GraphParams
	idx := 0
	for i := 0; i < graphNodes; i++ {
		for j := 0; j < graphNodes; j++ {
			v := tanh32(segment[idx])
			idx++
			if i < 3 {
				g.weights[i][j] = v
			}
		}
	}
	return g
}

func (g *GraphParams) step(state *State, external float32, dt float32) Flux {
	nodes := [graphNodes]float32{state.Energy, state.Waste, external, 1}

	var out [3]float32
	for i := 0; i < 3; i++ {
		var sum float32
		for j := 0; j < graphNodes; j++ {
			sum += g.weights[i][j] * nodes[j]
		}
		out[i] = sum
	}

	state.Energy += out[0] * dt
	if state.Energy < 0 {
		state.Energy = 0
	}
	state.Waste += out[1] * dt
	if state.Waste < 0 {
		state.Waste = 0
	}

	consumed := out[2] * dt
	if consumed < 0 {
		consumed = 0
	}
	if consumed > external {
		consumed = external
	}
	return Flux{ConsumedExternal: consumed}
}

func tanh32(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}
