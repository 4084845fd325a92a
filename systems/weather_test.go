package systems

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherDriftStaysInRange(t *testing.T) {
	cfg := testCfg(t, 10, 10)
	w := NewWeatherSystem(cfg, 99)

	// An hour of simulated drift.
	for i := 0; i < 60*60*60; i++ {
		w.Step(testDT)
		s := w.Snapshot()
		require.GreaterOrEqual(t, s.WindSpeed, float32(0))
		require.LessOrEqual(t, s.WindSpeed, float32(20))
		require.GreaterOrEqual(t, s.WindDirDeg, float32(0))
		require.Less(t, s.WindDirDeg, float32(360))
		require.GreaterOrEqual(t, s.HumidityPct, float32(0))
		require.LessOrEqual(t, s.HumidityPct, float32(100))
		require.GreaterOrEqual(t, s.TemperatureC, float32(-10))
		require.LessOrEqual(t, s.TemperatureC, float32(45))
		require.GreaterOrEqual(t, s.PressureHPa, float32(950))
		require.LessOrEqual(t, s.PressureHPa, float32(1050))
	}
}

func TestWeatherDriftActuallyDrifts(t *testing.T) {
	cfg := testCfg(t, 10, 10)
	w := NewWeatherSystem(cfg, 99)

	initial := w.Snapshot()
	for i := 0; i < 60*120; i++ {
		w.Step(testDT)
	}
	final := w.Snapshot()

	// At least one scalar should have wandered over two minutes.
	moved := initial.WindSpeed != final.WindSpeed ||
		initial.WindDirDeg != final.WindDirDeg ||
		initial.HumidityPct != final.HumidityPct ||
		initial.TemperatureC != final.TemperatureC ||
		initial.PressureHPa != final.PressureHPa
	assert.True(t, moved, "weather never drifted")
}

func TestPrecipitationNeverDrifts(t *testing.T) {
	cfg := testCfg(t, 10, 10)
	w := NewWeatherSystem(cfg, 99)

	p := float32(0.7)
	w.Set(WeatherPartial{Precipitation: &p})
	for i := 0; i < 60*60; i++ {
		w.Step(testDT)
	}
	assert.Equal(t, float32(0.7), w.Snapshot().Precipitation)
}

func TestWeatherSetPartial(t *testing.T) {
	cfg := testCfg(t, 10, 10)
	w := NewWeatherSystem(cfg, 99)
	before := w.Snapshot()

	temp := float32(30)
	wind := float32(12)
	w.Set(WeatherPartial{TemperatureC: &temp, WindSpeed: &wind})

	after := w.Snapshot()
	assert.Equal(t, float32(30), after.TemperatureC)
	assert.Equal(t, float32(12), after.WindSpeed)
	// Unspecified fields are retained.
	assert.Equal(t, before.HumidityPct, after.HumidityPct)
	assert.Equal(t, before.PressureHPa, after.PressureHPa)
	assert.Equal(t, before.WindDirDeg, after.WindDirDeg)
}

func TestWeatherSetClampsAndSanitizes(t *testing.T) {
	cfg := testCfg(t, 10, 10)
	w := NewWeatherSystem(cfg, 99)

	tests := []struct {
		name  string
		apply func()
		check func() bool
	}{
		{
			"wind clamped high",
			func() { v := float32(500); w.Set(WeatherPartial{WindSpeed: &v}) },
			func() bool { return w.Snapshot().WindSpeed == 20 },
		},
		{
			"direction wrapped",
			func() { v := float32(-90); w.Set(WeatherPartial{WindDirDeg: &v}) },
			func() bool { return w.Snapshot().WindDirDeg == 270 },
		},
		{
			"humidity clamped low",
			func() { v := float32(-3); w.Set(WeatherPartial{HumidityPct: &v}) },
			func() bool { return w.Snapshot().HumidityPct == 0 },
		},
		{
			"precipitation clamped",
			func() { v := float32(4); w.Set(WeatherPartial{Precipitation: &v}) },
			func() bool { return w.Snapshot().Precipitation == 1 },
		},
		{
			"NaN dropped",
			func() {
				v := float32(math.NaN())
				w.Set(WeatherPartial{TemperatureC: &v})
			},
			func() bool { return !math.IsNaN(float64(w.Snapshot().TemperatureC)) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.apply()
			assert.True(t, tt.check())
		})
	}
}

func TestWindVector(t *testing.T) {
	cfg := testCfg(t, 10, 10)
	w := NewWeatherSystem(cfg, 99)

	speed := float32(10)
	east := float32(90)
	w.Set(WeatherPartial{WindSpeed: &speed, WindDirDeg: &east})

	fx, fy := w.WindVector()
	assert.InDelta(t, 10, float64(fx), 1e-3)
	assert.InDelta(t, 0, float64(fy), 1e-3)

	north := float32(0)
	w.Set(WeatherPartial{WindDirDeg: &north})
	fx, fy = w.WindVector()
	assert.InDelta(t, 0, float64(fx), 1e-3)
	assert.InDelta(t, 10, float64(fy), 1e-3)
}
