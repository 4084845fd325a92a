package terrain

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenParams controls procedural heightmap seeding.
type GenParams struct {
	Scale      float64
	Octaves    int
	Lacunarity float64
	Gain       float64
	Amplitude  float64 // peak |height| of the generated field
}

// Generate fills the height field with fractal Brownian motion noise,
// centered on zero and scaled to ±Amplitude. Water and velocity fields
// are untouched.
func Generate(g *Grid, seed int64, p GenParams) {
	if p.Octaves < 1 {
		p.Octaves = 1
	}
	noise := opensimplex.New(seed)

	for y := 0; y < g.H; y++ {
		v := (float64(y) + 0.5) / float64(g.H)
		for x := 0; x < g.W; x++ {
			u := (float64(x) + 0.5) / float64(g.W)
			g.Height[y*g.W+x] = float32(fbm2(noise, u, v, p) * p.Amplitude)
		}
	}
}

// fbm2 sums noise octaves in [-1, 1].
func fbm2(noise opensimplex.Noise, u, v float64, p GenParams) float64 {
	sum := 0.0
	amp := 0.5
	freq := p.Scale

	for o := 0; o < p.Octaves; o++ {
		sum += amp * noise.Eval2(u*freq, v*freq)
		freq *= p.Lacunarity
		amp *= p.Gain
	}
	if sum > 1 {
		sum = 1
	} else if sum < -1 {
		sum = -1
	}
	return sum
}
