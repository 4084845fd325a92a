// Package sim owns the simulation state and advances it one tick at a
// time. A tick is a synchronous, bounded computation with a fixed phase
// order; external commands are queued and drained at the start of the
// next tick, so nothing mutates the fields mid-tick.
package sim

import (
	"fmt"
	"math"

	"github.com/botsofcog/sandtable/config"
	"github.com/botsofcog/sandtable/systems"
	"github.com/botsofcog/sandtable/telemetry"
	"github.com/botsofcog/sandtable/terrain"
)

// Options configures simulation construction.
type Options struct {
	// Width, Height override the configured grid dimensions when > 0.
	Width, Height int
	// Ramp supplies the color ramp stops; nil selects the default
	// elevation palette.
	Ramp []terrain.Stop
	// Seed drives every random stream in the simulation.
	Seed int64
	// Config supplies parameters; nil loads the embedded defaults.
	Config *config.Config
}

// Sim is the simulation core: the grid fields, the particle pool, and
// the per-tick systems. It is not safe for concurrent use; callers
// read snapshots only between ticks.
type Sim struct {
	cfg  *config.Config
	grid *terrain.Grid
	ramp *terrain.ColorRamp

	pool    *systems.ParticlePool
	sand    *systems.SandSystem
	water   *systems.WaterSystem
	erosion *systems.ErosionSystem
	weather *systems.WeatherSystem

	commands []command
	perf     *telemetry.PerfCollector
	tick     int64
}

// New builds a simulation from the given options.
func New(opts Options) (*Sim, error) {
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load("")
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	w := cfg.Grid.Width
	h := cfg.Grid.Height
	if opts.Width > 0 {
		w = opts.Width
	}
	if opts.Height > 0 {
		h = opts.Height
	}

	grid, err := terrain.NewGrid(w, h)
	if err != nil {
		return nil, err
	}

	ramp := terrain.DefaultRamp()
	if opts.Ramp != nil {
		ramp, err = terrain.NewColorRamp(opts.Ramp)
		if err != nil {
			return nil, fmt.Errorf("sim: %w", err)
		}
	}

	// Dimension overrides change the cell count the systems size
	// their scratch buffers from.
	sized := *cfg
	sized.Grid.Width = w
	sized.Grid.Height = h
	sized.Derived.CellN = w * h
	cfg = &sized

	seed := opts.Seed
	if seed == 0 {
		seed = 1
	}

	s := &Sim{
		cfg:     cfg,
		grid:    grid,
		ramp:    ramp,
		pool:    systems.NewParticlePool(cfg),
		sand:    systems.NewSandSystem(cfg, seed),
		water:   systems.NewWaterSystem(cfg, seed+1),
		erosion: systems.NewErosionSystem(cfg, seed+2),
		weather: systems.NewWeatherSystem(cfg, seed+3),
		perf:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
	}

	if cfg.Terrain.Generate {
		terrain.Generate(grid, seed, terrain.GenParams{
			Scale:      cfg.Terrain.NoiseScale,
			Octaves:    cfg.Terrain.Octaves,
			Lacunarity: cfg.Terrain.Lacunarity,
			Gain:       cfg.Terrain.Gain,
			Amplitude:  cfg.Terrain.Amplitude,
		})
	}

	return s, nil
}

// Tick advances the simulation by dt seconds. The phase order is
// fixed: commands, sand, water, erosion, weather, particles, clamp.
// Invalid dt values fall back to the configured timestep; a tick never
// fails.
func (s *Sim) Tick(dt float32) {
	if math.IsNaN(float64(dt)) || math.IsInf(float64(dt), 0) || dt <= 0 {
		dt = s.cfg.Derived.DT32
	}

	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseCommands)
	s.drainCommands()

	s.perf.StartPhase(telemetry.PhaseSand)
	s.sand.Step(s.grid, s.pool)

	s.perf.StartPhase(telemetry.PhaseWater)
	s.water.Step(s.grid, dt, s.weather.Snapshot(), s.pool)

	s.perf.StartPhase(telemetry.PhaseErosion)
	s.erosion.Step(s.grid, dt, s.pool)

	s.perf.StartPhase(telemetry.PhaseWeather)
	s.weather.Step(dt)

	s.perf.StartPhase(telemetry.PhaseParticles)
	wx, wy := s.weather.WindVector()
	s.pool.Step(dt, wx, wy)

	s.perf.StartPhase(telemetry.PhaseClamp)
	s.grid.ClampInvariants()

	s.perf.EndTick()
	s.tick++
}

// TickCount returns the number of completed ticks.
func (s *Sim) TickCount() int64 {
	return s.tick
}

// Grid exposes the live fields for host integration (depth-sensor
// ingestion writes heights here). Access only between ticks.
func (s *Sim) Grid() *terrain.Grid {
	return s.grid
}

// Weather returns the current weather state.
func (s *Sim) Weather() systems.Weather {
	return s.weather.Snapshot()
}

// SnapshotHeight returns the live height field. The slice is valid
// until the next Tick.
func (s *Sim) SnapshotHeight() []float32 {
	return s.grid.Height
}

// SnapshotWater returns the live water-depth field. The slice is valid
// until the next Tick.
func (s *Sim) SnapshotWater() []float32 {
	return s.grid.Water
}

// Particles calls fn for every active particle.
func (s *Sim) Particles(fn func(i int, p *systems.Particle)) {
	s.pool.Each(fn)
}

// ParticleCount returns the number of active particles.
func (s *Sim) ParticleCount() int {
	return s.pool.Count()
}

// ExtractContours re-extracts the iso-line network for the current
// height field.
func (s *Sim) ExtractContours(interval, min, max float32) []systems.ContourSegment {
	return systems.ExtractContours(s.grid, interval, min, max)
}

// RenderColorField fills buf with the RGB8 image of the height field
// via the color ramp. buf must hold at least W*H*3 bytes.
func (s *Sim) RenderColorField(buf []byte) {
	n := s.grid.N()
	if len(buf) < n*3 {
		return
	}
	for i := 0; i < n; i++ {
		c := s.ramp.ColorAt(s.grid.Height[i])
		buf[i*3] = c.R
		buf[i*3+1] = c.G
		buf[i*3+2] = c.B
	}
}

// PerfStats returns aggregated phase timings over the rolling window.
func (s *Sim) PerfStats() telemetry.PerfStats {
	return s.perf.Stats()
}

// Config returns the effective configuration.
func (s *Sim) Config() *config.Config {
	return s.cfg
}
