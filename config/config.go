// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Brush     BrushConfig     `yaml:"brush"`
	Sand      SandConfig      `yaml:"sand"`
	Water     WaterConfig     `yaml:"water"`
	Erosion   ErosionConfig   `yaml:"erosion"`
	Particles ParticlesConfig `yaml:"particles"`
	Weather   WeatherConfig   `yaml:"weather"`
	Contour   ContourConfig   `yaml:"contour"`
	Terrain   TerrainConfig   `yaml:"terrain"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GridConfig holds heightmap grid dimensions.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// PhysicsConfig holds timestep and gravity parameters.
type PhysicsConfig struct {
	DT      float64 `yaml:"dt"`
	Gravity float64 `yaml:"gravity"`
}

// BrushConfig holds terrain edit parameters.
type BrushConfig struct {
	BaseDelta float64 `yaml:"base_delta"`
}

// SandConfig holds the avalanche relaxation parameters.
type SandConfig struct {
	ReposeDeg     float64 `yaml:"repose_deg"`
	MoveRate      float64 `yaml:"move_rate"`
	MoveCap       float64 `yaml:"move_cap"`
	Relax         float64 `yaml:"relax"`
	ParticleScale float64 `yaml:"particle_scale"`
	ParticleCap   int     `yaml:"particle_cap"`
}

// WaterConfig holds the shallow-water parameters.
type WaterConfig struct {
	RainRate           float64 `yaml:"rain_rate"`
	RainParticleChance float64 `yaml:"rain_particle_chance"`
	Friction           float64 `yaml:"friction"`
	AdvectRate         float64 `yaml:"advect_rate"`
	MinDepth           float64 `yaml:"min_depth"`
	EvapRate           float64 `yaml:"evap_rate"`
	InfilRate          float64 `yaml:"infil_rate"`
	SpraySpeed         float64 `yaml:"spray_speed"`
	SprayChance        float64 `yaml:"spray_chance"`
}

// ErosionConfig holds hydraulic erosion parameters.
type ErosionConfig struct {
	Rate              float64 `yaml:"rate"`
	MinDepth          float64 `yaml:"min_depth"`
	ParticleThreshold float64 `yaml:"particle_threshold"`
	ParticleCap       int     `yaml:"particle_cap"`
}

// ParticlesConfig holds the effect-particle pool parameters.
type ParticlesConfig struct {
	MaxCount   int     `yaml:"max_count"`
	AirDrag    float64 `yaml:"air_drag"`
	GroundDamp float64 `yaml:"ground_damp"`
	WindFactor float64 `yaml:"wind_factor"`
}

// WeatherConfig holds initial weather state and drift step sizes.
type WeatherConfig struct {
	WindSpeed       float64 `yaml:"wind_speed"`
	WindDirDeg      float64 `yaml:"wind_dir_deg"`
	HumidityPct     float64 `yaml:"humidity_pct"`
	TemperatureC    float64 `yaml:"temperature_c"`
	Precipitation   float64 `yaml:"precipitation"`
	PressureHPa     float64 `yaml:"pressure_hpa"`
	DriftSpeed      float64 `yaml:"drift_speed"`
	WindStep        float64 `yaml:"wind_step"`
	DirStep         float64 `yaml:"dir_step"`
	HumidityStep    float64 `yaml:"humidity_step"`
	TemperatureStep float64 `yaml:"temperature_step"`
	PressureStep    float64 `yaml:"pressure_step"`
}

// ContourConfig holds default contour extraction parameters.
type ContourConfig struct {
	Interval float64 `yaml:"interval"`
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
}

// TerrainConfig holds optional procedural heightmap seeding parameters.
type TerrainConfig struct {
	Generate   bool    `yaml:"generate"`
	NoiseScale float64 `yaml:"noise_scale"`
	Octaves    int     `yaml:"octaves"`
	Lacunarity float64 `yaml:"lacunarity"`
	Gain       float64 `yaml:"gain"`
	Amplitude  float64 `yaml:"amplitude"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"`
	PerfWindow  int     `yaml:"perf_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32 // Physics.DT as float32
	Gravity32 float32
	CellN     int // Grid.Width * Grid.Height
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configurations the simulation cannot be built from.
func (c *Config) validate() error {
	if c.Grid.Width <= 1 || c.Grid.Height <= 1 {
		return fmt.Errorf("config: grid dimensions must be > 1, got %dx%d", c.Grid.Width, c.Grid.Height)
	}
	if c.Physics.DT <= 0 {
		return fmt.Errorf("config: physics.dt must be positive, got %v", c.Physics.DT)
	}
	if c.Particles.MaxCount < 1 {
		return fmt.Errorf("config: particles.max_count must be >= 1, got %d", c.Particles.MaxCount)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.Gravity32 = float32(c.Physics.Gravity)
	c.Derived.CellN = c.Grid.Width * c.Grid.Height
}

// WriteYAML saves the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
