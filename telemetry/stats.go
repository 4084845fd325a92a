package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats summarizes one stats window of the simulation: terrain
// and water mass plus particle load, aggregated over the window's
// per-tick samples.
type WindowStats struct {
	WindowEnd int64 `csv:"window_end"`

	HeightSumMean float64 `csv:"height_sum_mean"`
	HeightSumStd  float64 `csv:"height_sum_std"`

	WaterSumMean float64 `csv:"water_sum_mean"`
	WaterSumMax  float64 `csv:"water_sum_max"`

	ParticlesMean float64 `csv:"particles_mean"`
	ParticlesP90  float64 `csv:"particles_p90"`
	ParticlesMax  float64 `csv:"particles_max"`
}

// Collector accumulates per-tick field totals and flushes them as
// window aggregates.
type Collector struct {
	windowTicks int
	tick        int64

	heightSums []float64
	waterSums  []float64
	particles  []float64
}

// NewCollector creates a collector with a window of windowSec seconds
// at the given timestep.
func NewCollector(windowSec, dt float64) *Collector {
	ticks := int(windowSec / dt)
	if ticks < 1 {
		ticks = 1
	}
	return &Collector{
		windowTicks: ticks,
		heightSums:  make([]float64, 0, ticks),
		waterSums:   make([]float64, 0, ticks),
		particles:   make([]float64, 0, ticks),
	}
}

// RecordTick adds one tick's totals to the current window.
func (c *Collector) RecordTick(heightSum, waterSum float64, particleCount int) {
	c.tick++
	c.heightSums = append(c.heightSums, heightSum)
	c.waterSums = append(c.waterSums, waterSum)
	c.particles = append(c.particles, float64(particleCount))
}

// WindowReady reports whether a full window of samples is buffered.
func (c *Collector) WindowReady() bool {
	return len(c.heightSums) >= c.windowTicks
}

// Flush aggregates the buffered window and resets the sample buffers.
func (c *Collector) Flush() WindowStats {
	ws := WindowStats{
		WindowEnd:     c.tick,
		HeightSumMean: stat.Mean(c.heightSums, nil),
		HeightSumStd:  stat.StdDev(c.heightSums, nil),
		WaterSumMean:  stat.Mean(c.waterSums, nil),
		WaterSumMax:   maxOf(c.waterSums),
		ParticlesMean: stat.Mean(c.particles, nil),
		ParticlesP90:  quantile(c.particles, 0.9),
		ParticlesMax:  maxOf(c.particles),
	}

	c.heightSums = c.heightSums[:0]
	c.waterSums = c.waterSums[:0]
	c.particles = c.particles[:0]

	return ws
}

// LogStats logs the window aggregates.
func (ws WindowStats) LogStats() {
	slog.Info("window",
		"window_end", ws.WindowEnd,
		"height_sum_mean", ws.HeightSumMean,
		"water_sum_mean", ws.WaterSumMean,
		"water_sum_max", ws.WaterSumMax,
		"particles_mean", ws.ParticlesMean,
		"particles_p90", ws.ParticlesP90,
	)
}

// quantile returns the empirical p-quantile of values.
func quantile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
