package terrain

import (
	"fmt"
	"math"
)

// RGB is an 8-bit color triple.
type RGB struct {
	R, G, B uint8
}

// Stop is a single (height, color) entry of a color ramp.
type Stop struct {
	Height float32
	Color  RGB
}

// ColorRamp maps elevation to color by piecewise-linear interpolation
// over an ordered list of stops. Queries outside the stop range
// saturate to the endpoint colors.
type ColorRamp struct {
	stops []Stop
}

// NewColorRamp validates and builds a ramp. At least two stops are
// required and stop heights must be strictly increasing.
func NewColorRamp(stops []Stop) (*ColorRamp, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("terrain: color ramp needs at least 2 stops, got %d", len(stops))
	}
	for i := 1; i < len(stops); i++ {
		if stops[i].Height <= stops[i-1].Height {
			return nil, fmt.Errorf("terrain: color ramp heights must be strictly increasing (stop %d: %v <= %v)",
				i, stops[i].Height, stops[i-1].Height)
		}
	}
	r := &ColorRamp{stops: make([]Stop, len(stops))}
	copy(r.stops, stops)
	return r, nil
}

// DefaultRamp returns the standard sandbox elevation palette: deep
// water through shoreline, vegetation, rock and snow.
func DefaultRamp() *ColorRamp {
	r, _ := NewColorRamp([]Stop{
		{-2.0, RGB{0, 0, 96}},     // deep water
		{-1.0, RGB{0, 64, 192}},   // water
		{-0.2, RGB{64, 160, 255}}, // shallows
		{0.0, RGB{210, 195, 140}}, // shoreline sand
		{0.4, RGB{70, 150, 60}},   // lowland
		{1.0, RGB{110, 90, 60}},   // highland
		{1.6, RGB{140, 140, 140}}, // rock
		{2.0, RGB{255, 255, 255}}, // snow
	})
	return r
}

// Stops returns the ramp's stop list. The slice must not be mutated.
func (r *ColorRamp) Stops() []Stop {
	return r.stops
}

// ColorAt returns the interpolated color for elevation h. The ramp is
// short, so a linear scan locates the bracketing stop pair. Channel
// interpolation rounds half away from zero.
func (r *ColorRamp) ColorAt(h float32) RGB {
	first := r.stops[0]
	last := r.stops[len(r.stops)-1]
	if h <= first.Height {
		return first.Color
	}
	if h >= last.Height {
		return last.Color
	}

	for i := 1; i < len(r.stops); i++ {
		hi := r.stops[i]
		if h > hi.Height {
			continue
		}
		lo := r.stops[i-1]
		t := (h - lo.Height) / (hi.Height - lo.Height)
		return RGB{
			R: lerpChannel(lo.Color.R, hi.Color.R, t),
			G: lerpChannel(lo.Color.G, hi.Color.G, t),
			B: lerpChannel(lo.Color.B, hi.Color.B, t),
		}
	}
	return last.Color
}

func lerpChannel(a, b uint8, t float32) uint8 {
	v := math.Round(float64(a) + float64(t)*(float64(b)-float64(a)))
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
