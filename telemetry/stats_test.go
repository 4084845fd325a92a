package telemetry

import (
	"math"
	"testing"
)

func TestCollectorWindowing(t *testing.T) {
	// 0.05s window at dt=0.01 -> 5 ticks per window.
	c := NewCollector(0.05, 0.01)

	for i := 0; i < 4; i++ {
		c.RecordTick(10, 1, 100)
		if c.WindowReady() {
			t.Fatalf("window ready after %d of 5 ticks", i+1)
		}
	}
	c.RecordTick(10, 1, 100)
	if !c.WindowReady() {
		t.Fatal("window should be ready after 5 ticks")
	}

	ws := c.Flush()
	if ws.WindowEnd != 5 {
		t.Errorf("WindowEnd = %d, want 5", ws.WindowEnd)
	}
	if c.WindowReady() {
		t.Error("flush should reset the window")
	}
}

func TestCollectorAggregates(t *testing.T) {
	c := NewCollector(0.05, 0.01)

	heights := []float64{10, 12, 14, 16, 18}
	waters := []float64{1, 2, 3, 2, 1}
	particles := []int{100, 200, 300, 400, 500}
	for i := range heights {
		c.RecordTick(heights[i], waters[i], particles[i])
	}

	ws := c.Flush()

	if math.Abs(ws.HeightSumMean-14) > 1e-9 {
		t.Errorf("HeightSumMean = %v, want 14", ws.HeightSumMean)
	}
	if math.Abs(ws.WaterSumMean-1.8) > 1e-9 {
		t.Errorf("WaterSumMean = %v, want 1.8", ws.WaterSumMean)
	}
	if ws.WaterSumMax != 3 {
		t.Errorf("WaterSumMax = %v, want 3", ws.WaterSumMax)
	}
	if ws.ParticlesMax != 500 {
		t.Errorf("ParticlesMax = %v, want 500", ws.ParticlesMax)
	}
	if ws.ParticlesMean != 300 {
		t.Errorf("ParticlesMean = %v, want 300", ws.ParticlesMean)
	}
	if ws.ParticlesP90 < 400 || ws.ParticlesP90 > 500 {
		t.Errorf("ParticlesP90 = %v, want within [400, 500]", ws.ParticlesP90)
	}
}

func TestCollectorMinimumWindow(t *testing.T) {
	// A window shorter than one tick still buffers one sample.
	c := NewCollector(0.001, 0.0166)
	c.RecordTick(5, 0.5, 10)
	if !c.WindowReady() {
		t.Fatal("one-tick window should be ready immediately")
	}
	ws := c.Flush()
	if ws.HeightSumMean != 5 || ws.WaterSumMean != 0.5 {
		t.Errorf("single-sample aggregates wrong: %+v", ws)
	}
}

func TestQuantileEmpty(t *testing.T) {
	if got := quantile(nil, 0.9); got != 0 {
		t.Errorf("quantile(nil) = %v, want 0", got)
	}
	if got := maxOf(nil); got != 0 {
		t.Errorf("maxOf(nil) = %v, want 0", got)
	}
}
