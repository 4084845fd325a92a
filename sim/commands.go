package sim

import (
	"math"

	"github.com/botsofcog/sandtable/systems"
	"github.com/botsofcog/sandtable/terrain"
)

type commandKind uint8

const (
	cmdBrush commandKind = iota
	cmdAddWater
	cmdDrainWater
	cmdWeather
)

// command is one queued external intent. The queue is drained FIFO at
// the start of each tick; the core never applies edits mid-tick.
type command struct {
	kind    commandKind
	brush   terrain.BrushOp
	x, y    int
	amount  float32
	weather systems.WeatherPartial
}

// EnqueueBrush queues a terrain edit for the next tick. NaN or
// non-finite parameters are sanitized; intensity is clamped to [0, 1].
// Centers outside the grid are legal and affect only the intersected
// disc.
func (s *Sim) EnqueueBrush(cx, cy, radius, intensity float32, kind terrain.BrushKind) {
	s.commands = append(s.commands, command{
		kind: cmdBrush,
		brush: terrain.BrushOp{
			CX:        sanitize(cx, 0),
			CY:        sanitize(cy, 0),
			Radius:    sanitize(radius, 0),
			Intensity: clamp01(sanitize(intensity, 0)),
			Kind:      kind,
		},
	})
}

// AddWater queues a water injection at cell (x, y).
func (s *Sim) AddWater(x, y int, amount float32) {
	s.commands = append(s.commands, command{
		kind:   cmdAddWater,
		x:      x,
		y:      y,
		amount: sanitize(amount, 0),
	})
}

// DrainWater queues a water removal at cell (x, y).
func (s *Sim) DrainWater(x, y int, amount float32) {
	s.commands = append(s.commands, command{
		kind:   cmdDrainWater,
		x:      x,
		y:      y,
		amount: sanitize(amount, 0),
	})
}

// SetWeather queues a sparse weather update; nil fields keep their
// current values.
func (s *Sim) SetWeather(p systems.WeatherPartial) {
	s.commands = append(s.commands, command{kind: cmdWeather, weather: p})
}

// drainCommands applies every queued command in arrival order.
func (s *Sim) drainCommands() {
	base := float32(s.cfg.Brush.BaseDelta)
	for i := range s.commands {
		c := &s.commands[i]
		switch c.kind {
		case cmdBrush:
			terrain.ApplyBrush(s.grid, c.brush, base)
		case cmdAddWater:
			systems.AddWater(s.grid, c.x, c.y, c.amount)
		case cmdDrainWater:
			systems.DrainWater(s.grid, c.x, c.y, c.amount)
		case cmdWeather:
			s.weather.Set(c.weather)
		}
	}
	s.commands = s.commands[:0]
}

// sanitize replaces NaN and infinities with a fallback value.
func sanitize(v, fallback float32) float32 {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return v
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
