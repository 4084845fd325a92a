package terrain

import "math"

// BrushKind selects the terrain edit operation.
type BrushKind uint8

const (
	BrushRaise BrushKind = iota
	BrushLower
	BrushSmooth
)

// Edits clamp tighter than the field invariant so sculpting alone can
// never reach the numeric bounds.
const (
	brushHeightMax = 2.0
	brushHeightMin = -2.0
)

// BrushOp describes a single disc-shaped terrain edit. Intensity is in
// [0, 1]; the caller scales it by the configured base delta.
type BrushOp struct {
	CX, CY    float32
	Radius    float32
	Intensity float32
	Kind      BrushKind
}

// ApplyBrush applies op to every cell within the Euclidean disc. The
// center may lie outside the grid; only the intersected region is
// touched. base is the per-edit height delta at full intensity and
// zero distance (config brush.base_delta).
func ApplyBrush(g *Grid, op BrushOp, base float32) {
	if op.Radius <= 0 {
		return
	}

	// Bounding box of the disc, clipped to the grid.
	x0 := int(math.Floor(float64(op.CX - op.Radius)))
	x1 := int(math.Ceil(float64(op.CX + op.Radius)))
	y0 := int(math.Floor(float64(op.CY - op.Radius)))
	y1 := int(math.Ceil(float64(op.CY + op.Radius)))
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > g.W-1 {
		x1 = g.W - 1
	}
	if y1 > g.H-1 {
		y1 = g.H - 1
	}

	r2 := op.Radius * op.Radius
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float32(x) - op.CX
			dy := float32(y) - op.CY
			d2 := dx*dx + dy*dy
			if d2 > r2 {
				continue
			}

			dist := float32(math.Sqrt(float64(d2)))
			falloff := 1 - dist/op.Radius
			delta := op.Intensity * falloff * base

			i := y*g.W + x
			switch op.Kind {
			case BrushRaise:
				h := g.Height[i] + delta
				if h > brushHeightMax {
					h = brushHeightMax
				}
				g.Height[i] = h
			case BrushLower:
				h := g.Height[i] - delta
				if h < brushHeightMin {
					h = brushHeightMin
				}
				g.Height[i] = h
			case BrushSmooth:
				avg := neighborhoodMean(g, x, y)
				g.Height[i] = g.Height[i]*(1-delta) + avg*delta
			}
		}
	}
}

// neighborhoodMean returns the edge-clamped 3x3 mean around (x, y).
func neighborhoodMean(g *Grid, x, y int) float32 {
	var sum float32
	for oy := -1; oy <= 1; oy++ {
		yy := y + oy
		if yy < 0 {
			yy = 0
		} else if yy > g.H-1 {
			yy = g.H - 1
		}
		for ox := -1; ox <= 1; ox++ {
			xx := x + ox
			if xx < 0 {
				xx = 0
			} else if xx > g.W-1 {
				xx = g.W - 1
			}
			sum += g.Height[yy*g.W+xx]
		}
	}
	return sum / 9
}
