package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/botsofcog/sandtable/config"
	"github.com/botsofcog/sandtable/sim"
	"github.com/botsofcog/sandtable/systems"
	"github.com/botsofcog/sandtable/telemetry"
	"github.com/botsofcog/sandtable/terrain"
)

var (
	configPath  = flag.String("config", "", "Path to YAML config (empty = embedded defaults)")
	maxTicks    = flag.Int("ticks", 600, "Number of ticks to run")
	seed        = flag.Int64("seed", 42, "Random seed")
	logInterval = flag.Int("log", 60, "Log world state every N ticks (0 = disabled)")
	logFile     = flag.String("logfile", "", "Write logs to file instead of stdout")
	perfLog     = flag.Bool("perf", false, "Log performance breakdown at exit")
	outDir      = flag.String("out", "", "Output directory for CSV telemetry (empty = disabled)")
	rain        = flag.Float64("rain", 0, "Precipitation intensity 0..1 for the whole run")
	genTerrain  = flag.Bool("gen", false, "Seed the heightmap with procedural noise")
	framePath   = flag.String("frame", "", "Write the final color field as a PPM image")
	demoBrush   = flag.Bool("demo", false, "Sculpt a demo ridge and pour water on it")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *genTerrain {
		cfg.Terrain.Generate = true
	}

	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logfile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		sim.SetLogWriter(f)
	}

	s, err := sim.New(sim.Options{Seed: *seed, Config: cfg})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sim: %v\n", err)
		os.Exit(1)
	}

	om, err := telemetry.NewOutputManager(*outDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "output: %v\n", err)
		os.Exit(1)
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "output: %v\n", err)
	}

	collector := telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Physics.DT)

	if *rain > 0 {
		p := float32(*rain)
		s.SetWeather(systems.WeatherPartial{Precipitation: &p})
	}
	if *demoBrush {
		sculptDemoRidge(s, cfg)
	}

	dt := cfg.Derived.DT32
	for tick := 0; tick < *maxTicks; tick++ {
		s.Tick(dt)

		g := s.Grid()
		collector.RecordTick(float64(g.TotalHeight()), float64(g.TotalWater()), s.ParticleCount())
		if collector.WindowReady() {
			ws := collector.Flush()
			ws.LogStats()
			if err := om.WriteStats(ws); err != nil {
				fmt.Fprintf(os.Stderr, "telemetry: %v\n", err)
			}
			if err := om.WritePerf(s.PerfStats(), s.TickCount()); err != nil {
				fmt.Fprintf(os.Stderr, "telemetry: %v\n", err)
			}
		}

		if *logInterval > 0 && (tick+1)%*logInterval == 0 {
			s.LogState()
		}
	}

	if *perfLog {
		s.PerfStats().LogStats()
	}

	if *framePath != "" {
		if err := writePPM(s, *framePath); err != nil {
			fmt.Fprintf(os.Stderr, "frame: %v\n", err)
			os.Exit(1)
		}
		sim.Logf("Wrote %s", *framePath)
	}
}

// sculptDemoRidge raises a central ridge and pours water next to it so
// a short run shows avalanching, flow and erosion together.
func sculptDemoRidge(s *sim.Sim, cfg *config.Config) {
	w := cfg.Grid.Width
	h := cfg.Grid.Height
	cx := float32(w) / 2
	cy := float32(h) / 2

	for i := 0; i < 40; i++ {
		s.EnqueueBrush(cx, cy, float32(h)/4, 1.0, terrain.BrushRaise)
	}
	s.AddWater(w/4, h/2, 0.5)
	s.AddWater(3*w/4, h/2, 0.5)
}

// writePPM dumps the rendered color field as a binary PPM image.
func writePPM(s *sim.Sim, path string) error {
	g := s.Grid()
	buf := make([]byte, g.N()*3)
	s.RenderColorField(buf)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "P6\n%d %d\n255\n", g.W, g.H); err != nil {
		return err
	}
	_, err = f.Write(buf)
	return err
}
