// Package neuralnet implements the fixed-topology feed-forward controller
// every organism decodes from its genome's neural-weights segment.
//
// Grounded on the hand-written (non-NEAT) forward/mutate idiom of the
// teacher's neural/ffnn.go, generalized to the spec's fixed 8->16->4 shape
// and tanh-everywhere activation rather than its configurable layer sizes.
package neuralnet

import "math"

const (
	InputSize  = 8
	HiddenSize = 16
	OutputSize = 4

	// WeightCount = 8*16 + 16 + 16*4 + 4.
	WeightCount = InputSize*HiddenSize + HiddenSize + HiddenSize*OutputSize + OutputSize
)

// NeuralNet is a stack-allocated-in-spirit 8->16(tanh)->4(tanh) network.
type NeuralNet struct {
	wih [InputSize][HiddenSize]float32
	bh  [HiddenSize]float32
	who [HiddenSize][OutputSize]float32
	bo  [OutputSize]float32
}

// FromWeights decodes a NeuralNet from a flat slice of exactly WeightCount
// values, in the order spec.md §4.2 and the original nn.rs fix: row-major
// input-to-hidden matrix, hidden biases, row-major hidden-to-output matrix,
// output biases. Panics if len(weights) != WeightCount.
func FromWeights(weights []float32) NeuralNet {
	if len(weights) != WeightCount {
		panic("neuralnet: FromWeights needs exactly WeightCount values")
	}
	var nn NeuralNet
	idx := 0
	for i := 0; i < InputSize; i++ {
		for j := 0; j < HiddenSize; j++ {
			nn.wih[i][j] = weights[idx]
			idx++
		}
	}
	for j := 0; j < HiddenSize; j++ {
		nn.bh[j] = weights[idx]
		idx++
	}
	for i := 0; i < HiddenSize; i++ {
		for j := 0; j < OutputSize; j++ {
			nn.who[i][j] = weights[idx]
			idx++
		}
	}
	for j := 0; j < OutputSize; j++ {
		nn.bo[j] = weights[idx]
		idx++
	}
	return nn
}

// ToWeights re-serializes the network in the same order FromWeights expects,
// so ToWeights(FromWeights(w)) returns w unchanged, per spec.md §8 "Neural
// round trip".
func (nn NeuralNet) ToWeights() []float32 {
	out := make([]float32, 0, WeightCount)
	for i := 0; i < InputSize; i++ {
		out = append(out, nn.wih[i][:]...)
	}
	out = append(out, nn.bh[:]...)
	for i := 0; i < HiddenSize; i++ {
		out = append(out, nn.who[i][:]...)
	}
	out = append(out, nn.bo[:]...)
	return out
}

// Forward computes tanh(W_ho . tanh(W_ih . x + b_h) + b_o). No allocation.
func (nn NeuralNet) Forward(input [InputSize]float32) [OutputSize]float32 {
	var hidden [HiddenSize]float32
	hidden = nn.bh
	for i, x := range input {
		row := nn.wih[i]
		for j := range hidden {
			hidden[j] += x * row[j]
		}
	}
	for j := range hidden {
		hidden[j] = tanh32(hidden[j])
	}

	output := nn.bo
	for i, h := range hidden {
		row := nn.who[i]
		for j := range output {
			output[j] += h * row[j]
		}
	}
	for j := range output {
		output[j] = tanh32(output[j])
	}
	return output
}

func tanh32(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}
