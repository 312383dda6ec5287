// Package resourcefield implements the toroidal scalar resource grid
// organisms draw energy from.
//
// Grounded on the teacher's systems/resource_field.go (toroidal grid with
// wrapped cell lookup), trimmed to spec.md §4.6's flat discrete-cell model:
// no bilinear sampling, no animated noise field. Initial-cell seeding still
// uses the teacher's noise-based idiom via opensimplex-go.
package resourcefield

import (
	"github.com/ojrac/opensimplex-go"
)

// Field is a grid of cells covering a toroidal world of side worldSize,
// at resolution cellSize.
type Field struct {
	worldSize float64
	cellSize  float64
	cols      int
	rows      int
	cap       float32
	cells     []float32
}

// New builds a Field and, if seed, fills every cell from a deterministic
// single-octave OpenSimplex noise sample seeded from rngSeed — following the
// teacher's fbmTiled idiom, here evaluated once at construction rather
// than animated per frame.
func New(worldSize, cellSize float64, cap float32, seed bool, rngSeed uint64) *Field {
	cols := int(worldSize / cellSize)
	if cols < 1 {
		cols = 1
	}
	rows := cols

	f := &Field{
		worldSize: worldSize,
		cellSize:  cellSize,
		cols:      cols,
		rows:      rows,
		cap:       cap,
		cells:     make([]float32, cols*rows),
	}
	if seed {
		f.seed(rngSeed)
	}
	return f
}

func (f *Field) seed(rngSeed uint64) {
	noise := opensimplex.New(int64(rngSeed))
	scale := 4.0 / f.worldSize
	for row := 0; row < f.rows; row++ {
		for col := 0; col < f.cols; col++ {
			x := (float64(col) + 0.5) * f.cellSize
			y := (float64(row) + 0.5) * f.cellSize
			// Normalize from [-1,1] to [0,1] the way the teacher's
			// resource_field.go does for its noise samples.
			v := (noise.Eval2(x*scale, y*scale) + 1) * 0.5
			f.cells[row*f.cols+col] = float32(v) * f.cap
		}
	}
}

func (f *Field) wrap(x, y float64) (int, int) {
	col := int(mod(x, f.worldSize) / f.cellSize)
	row := int(mod(y, f.worldSize) / f.cellSize)
	if col >= f.cols {
		col = f.cols - 1
	}
	if row >= f.rows {
		row = f.rows - 1
	}
	return col, row
}

func mod(v, m float64) float64 {
	r := v - float64(int(v/m))*m
	if r < 0 {
		r += m
	}
	return r
}

// Get returns the cell covering the wrapped point (x, y).
func (f *Field) Get(x, y float64) float32 {
	col, row := f.wrap(x, y)
	return f.cells[row*f.cols+col]
}

// Set overwrites the cell covering (x, y).
func (f *Field) Set(x, y float64, v float32) {
	col, row := f.wrap(x, y)
	f.cells[row*f.cols+col] = v
}

// Take decrements the cell covering (x, y) by min(amount, cell value) and
// returns the amount actually removed.
func (f *Field) Take(x, y float64, amount float32) float32 {
	if amount <= 0 {
		return 0
	}
	col, row := f.wrap(x, y)
	idx := row*f.cols + col
	taken := amount
	if taken > f.cells[idx] {
		taken = f.cells[idx]
	}
	f.cells[idx] -= taken
	return taken
}

// Regenerate adds amount to every cell, clamped at the configured cap.
func (f *Field) Regenerate(amount float32) {
	if amount == 0 {
		return
	}
	for i, v := range f.cells {
		v += amount
		if v > f.cap {
			v = f.cap
		}
		if v < 0 {
			v = 0
		}
		f.cells[i] = v
	}
}

// Total sums every cell, used for metrics.
func (f *Field) Total() float64 {
	var sum float64
	for _, v := range f.cells {
		sum += float64(v)
	}
	return sum
}
