// Package terrain provides the mutable heightmap grid, its editing
// primitives, and the height-to-color ramp lookup.
package terrain

import "fmt"

// Elevation bounds for the normalized heightmap. Edits clamp tighter
// (±2.0); transient numeric drift is re-clamped to these at tick end.
const (
	HeightMin = -2.2
	HeightMax = 2.2
)

// Grid owns the dense per-cell simulation fields, indexed y*W + x.
type Grid struct {
	W, H int

	// Height is the normalized terrain elevation.
	Height []float32
	// Water is the water depth above the terrain surface, always >= 0.
	Water []float32
	// VX, VY are the horizontal water-velocity components in cells/sec.
	VX, VY []float32
	// Flow caches the last-tick water speed per cell for erosion and rendering.
	Flow []float32
}

// NewGrid creates a flat, dry grid. Dimensions must both be > 1.
func NewGrid(w, h int) (*Grid, error) {
	if w <= 1 || h <= 1 {
		return nil, fmt.Errorf("terrain: grid dimensions must be > 1, got %dx%d", w, h)
	}
	n := w * h
	return &Grid{
		W:      w,
		H:      h,
		Height: make([]float32, n),
		Water:  make([]float32, n),
		VX:     make([]float32, n),
		VY:     make([]float32, n),
		Flow:   make([]float32, n),
	}, nil
}

// N returns the cell count.
func (g *Grid) N() int {
	return g.W * g.H
}

// Idx returns the flat index for (x, y). Callers must bounds-check.
func (g *Grid) Idx(x, y int) int {
	return y*g.W + x
}

// InBounds reports whether (x, y) is a valid cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// HeightAt returns the elevation at (x, y), or 0 outside the grid.
func (g *Grid) HeightAt(x, y int) float32 {
	if !g.InBounds(x, y) {
		return 0
	}
	return g.Height[y*g.W+x]
}

// WaterAt returns the water depth at (x, y), or 0 outside the grid.
func (g *Grid) WaterAt(x, y int) float32 {
	if !g.InBounds(x, y) {
		return 0
	}
	return g.Water[y*g.W+x]
}

// HeightSample returns the bilinearly interpolated elevation at the
// fractional cell coordinate (fx, fy). Coordinates are edge-clamped, so
// out-of-range samples return the nearest boundary value.
func (g *Grid) HeightSample(fx, fy float32) float32 {
	return g.sampleField(g.Height, fx, fy)
}

// WaterSample returns the bilinearly interpolated water depth at (fx, fy).
func (g *Grid) WaterSample(fx, fy float32) float32 {
	return g.sampleField(g.Water, fx, fy)
}

func (g *Grid) sampleField(field []float32, fx, fy float32) float32 {
	if fx < 0 {
		fx = 0
	}
	if fy < 0 {
		fy = 0
	}
	maxX := float32(g.W - 1)
	maxY := float32(g.H - 1)
	if fx > maxX {
		fx = maxX
	}
	if fy > maxY {
		fy = maxY
	}

	x0 := int(fx)
	y0 := int(fy)
	x1 := x0 + 1
	if x1 > g.W-1 {
		x1 = g.W - 1
	}
	y1 := y0 + 1
	if y1 > g.H-1 {
		y1 = g.H - 1
	}

	tx := fx - float32(x0)
	ty := fy - float32(y0)

	i00 := y0*g.W + x0
	i10 := y0*g.W + x1
	i01 := y1*g.W + x0
	i11 := y1*g.W + x1

	a := field[i00] + (field[i10]-field[i00])*tx
	b := field[i01] + (field[i11]-field[i01])*tx
	return a + (b-a)*ty
}

// ClampInvariants re-establishes the field invariants: |height| <= 2.2
// and water >= 0. Called once per tick after all mutating passes.
func (g *Grid) ClampInvariants() {
	for i := range g.Height {
		if g.Height[i] > HeightMax {
			g.Height[i] = HeightMax
		} else if g.Height[i] < HeightMin {
			g.Height[i] = HeightMin
		}
	}
	for i := range g.Water {
		if g.Water[i] < 0 {
			g.Water[i] = 0
		}
	}
}

// TotalHeight returns the summed elevation over all cells.
func (g *Grid) TotalHeight() float32 {
	var total float32
	for _, h := range g.Height {
		total += h
	}
	return total
}

// TotalWater returns the summed water depth over all cells.
func (g *Grid) TotalWater() float32 {
	var total float32
	for _, w := range g.Water {
		total += w
	}
	return total
}
