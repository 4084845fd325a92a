package sim

import (
	"fmt"
	"io"
)

// logWriter is the destination for log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// LogState writes a one-block summary of the current simulation state.
func (s *Sim) LogState() {
	g := s.grid
	w := s.weather.Snapshot()

	var wetCells int
	var maxDepth float32
	for _, d := range g.Water {
		if d > 0 {
			wetCells++
			if d > maxDepth {
				maxDepth = d
			}
		}
	}

	Logf("=== Tick %d ===", s.tick)
	Logf("Terrain: sum=%.3f  Water: sum=%.4f (wet cells: %d, max depth: %.4f)",
		g.TotalHeight(), g.TotalWater(), wetCells, maxDepth)
	Logf("Particles: %d/%d", s.pool.Count(), s.pool.Cap())
	Logf("Weather: wind %.1f m/s @ %.0f°, humidity %.0f%%, %.1f°C, precip %.2f, %.0f hPa",
		w.WindSpeed, w.WindDirDeg, w.HumidityPct, w.TemperatureC, w.Precipitation, w.PressureHPa)
	Logf("")
}
