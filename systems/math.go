package systems

import "math"

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// wrapDeg wraps an angle in degrees to [0, 360).
func wrapDeg(a float32) float32 {
	a = float32(math.Mod(float64(a), 360))
	if a < 0 {
		a += 360
	}
	return a
}

// fastSqrt approximates sqrt(x) using fast inverse sqrt with one
// Newton step. Avoids the float32->float64 round trip of math.Sqrt in
// the per-cell hot loops; accurate to ~0.2% which is far below the
// thresholds it is compared against.
func fastSqrt(x float32) float32 {
	if x <= 0 {
		return 0
	}
	i := math.Float32bits(x)
	i = 0x5f375a86 - (i >> 1)
	y := math.Float32frombits(i)
	y = y * (1.5 - 0.5*x*y*y)
	return x * y
}
