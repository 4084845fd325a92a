package systems

import (
	"math"

	"github.com/botsofcog/sandtable/terrain"
)

// ContourStyle classifies a contour line by its level index, the way
// printed topographic maps distinguish index, major and minor lines.
type ContourStyle uint8

const (
	ContourMinor ContourStyle = iota
	ContourMajor
	ContourIndex
)

// ContourSegment is one short iso-line piece in grid coordinates.
type ContourSegment struct {
	X0, Y0 float32
	X1, Y1 float32
	Level  float32
	Style  ContourStyle
}

// ExtractContours walks every elevation level from min to max at the
// given interval and emits a segment wherever the level crosses a cell
// edge. For each cell the horizontal edge (h00, h10) and the vertical
// edge (h00, h01) are tested; a crossing produces a one-cell segment
// perpendicular to the crossed edge. At typical grid densities the
// segments join into a visually continuous network without a full
// marching-squares case table.
//
// Output is deterministic: levels ascend, cells scan row-major, and
// the horizontal edge is tested before the vertical one.
func ExtractContours(g *terrain.Grid, interval, min, max float32) []ContourSegment {
	var segs []ContourSegment
	if interval <= 0 || min > max {
		return segs
	}

	steps := int((max-min)/interval + 0.5)
	for k := 0; k <= steps; k++ {
		level := min + float32(k)*interval
		if level > max+interval*1e-4 {
			break
		}
		style := styleForLevel(level, interval)

		for y := 0; y < g.H-1; y++ {
			for x := 0; x < g.W-1; x++ {
				h00 := g.Height[y*g.W+x]
				h10 := g.Height[y*g.W+x+1]
				h01 := g.Height[(y+1)*g.W+x]

				if between(level, h00, h10) {
					t := (level - h00) / (h10 - h00)
					segs = append(segs, ContourSegment{
						X0: float32(x) + t, Y0: float32(y),
						X1: float32(x) + t, Y1: float32(y) + 1,
						Level: level, Style: style,
					})
				}
				if between(level, h00, h01) {
					t := (level - h00) / (h01 - h00)
					segs = append(segs, ContourSegment{
						X0: float32(x), Y0: float32(y) + t,
						X1: float32(x) + 1, Y1: float32(y) + t,
						Level: level, Style: style,
					})
				}
			}
		}
	}
	return segs
}

// styleForLevel derives the line style from the integer level index:
// every 10th level is an index line, every 5th a major line.
func styleForLevel(level, interval float32) ContourStyle {
	n := int(math.Round(float64(level / interval)))
	if n < 0 {
		n = -n
	}
	switch {
	case n%10 == 0:
		return ContourIndex
	case n%5 == 0:
		return ContourMajor
	default:
		return ContourMinor
	}
}

// between reports whether level lies strictly between a and b.
func between(level, a, b float32) bool {
	if a < b {
		return level > a && level < b
	}
	return level > b && level < a
}
