package systems

import (
	"math/rand"
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/botsofcog/sandtable/config"
	"github.com/botsofcog/sandtable/terrain"
)

// WaterSystem advances the shallow-water fields: precipitation input,
// pressure-gradient velocity update, semi-Eulerian advection, and
// evaporation/infiltration loss. Pressure is proportional to the total
// surface height (terrain + water), so water runs downhill and levels
// out.
type WaterSystem struct {
	gravity     float32
	rainRate    float32
	rainChance  float32
	friction    float32 // per-tick multiplier, tuned for 60 Hz
	advectRate  float32
	minDepth    float32
	evapRate    float32
	infilRate   float32
	spraySpeed  float32
	sprayChance float32

	// Double buffers: the velocity update reads the committed fields
	// and writes here, so cell order cannot bias the result.
	vxNew, vyNew []float32
	inflow       []float32

	numWorkers int
	rng        *rand.Rand
}

var (
	waterColor = terrain.RGB{R: 80, G: 160, B: 255}
	rainColor  = terrain.RGB{R: 170, G: 200, B: 255}
)

// NewWaterSystem builds the system for a grid of cfg.Derived.CellN cells.
func NewWaterSystem(cfg *config.Config, seed int64) *WaterSystem {
	n := cfg.Derived.CellN
	return &WaterSystem{
		gravity:     cfg.Derived.Gravity32,
		rainRate:    float32(cfg.Water.RainRate),
		rainChance:  float32(cfg.Water.RainParticleChance),
		friction:    float32(cfg.Water.Friction),
		advectRate:  float32(cfg.Water.AdvectRate),
		minDepth:    float32(cfg.Water.MinDepth),
		evapRate:    float32(cfg.Water.EvapRate),
		infilRate:   float32(cfg.Water.InfilRate),
		spraySpeed:  float32(cfg.Water.SpraySpeed),
		sprayChance: float32(cfg.Water.SprayChance),
		vxNew:       make([]float32, n),
		vyNew:       make([]float32, n),
		inflow:      make([]float32, n),
		numWorkers:  runtime.GOMAXPROCS(0),
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Step runs the full water pass for one tick.
func (ws *WaterSystem) Step(g *terrain.Grid, dt float32, w Weather, pool *ParticlePool) {
	if w.Precipitation > 0 {
		ws.precipitate(g, dt, w, pool)
	}
	ws.updateVelocity(g, dt)
	ws.advect(g)
	ws.applyLoss(g, dt, w)
	ws.cacheFlowAndSpray(g, pool)
}

// precipitate adds rainfall to every cell and samples rain particles.
func (ws *WaterSystem) precipitate(g *terrain.Grid, dt float32, w Weather, pool *ParticlePool) {
	add := w.Precipitation * ws.rainRate * dt
	for i := range g.Water {
		g.Water[i] += add
		if ws.rng.Float32() < ws.rainChance {
			x := float32(i%g.W) + ws.rng.Float32()
			y := float32(i/g.W) + ws.rng.Float32()
			pos := mgl32.Vec3{x, y, 2 + ws.rng.Float32()}
			vel := mgl32.Vec3{0, 0, -2}
			pool.Spawn(ParticleRain, pos, vel, 0.5+ws.rng.Float32(), 0.5, rainColor)
		}
	}
}

// updateVelocity accelerates water down the total-surface gradient and
// applies friction. Rows are sharded across workers; every worker
// writes only its own rows of the new-velocity buffers.
func (ws *WaterSystem) updateVelocity(g *terrain.Grid, dt float32) {
	rowsPerWorker := (g.H + ws.numWorkers - 1) / ws.numWorkers

	var wg sync.WaitGroup
	for wk := 0; wk < ws.numWorkers; wk++ {
		startY := wk * rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > g.H {
			endY = g.H
		}
		if startY >= g.H {
			break
		}

		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			ws.velocityRows(g, dt, y0, y1)
		}(startY, endY)
	}
	wg.Wait()

	copy(g.VX, ws.vxNew)
	copy(g.VY, ws.vyNew)
}

// velocityRows computes new velocities for rows [y0, y1). The surface
// gradient is an edge-clamped central difference, so boundary cells
// still drain toward open edges.
func (ws *WaterSystem) velocityRows(g *terrain.Grid, dt float32, y0, y1 int) {
	for y := y0; y < y1; y++ {
		ym := y - 1
		if ym < 0 {
			ym = 0
		}
		yp := y + 1
		if yp > g.H-1 {
			yp = g.H - 1
		}
		for x := 0; x < g.W; x++ {
			i := y*g.W + x
			if g.Water[i] <= ws.minDepth {
				// Dry cell: no momentum to carry.
				ws.vxNew[i] = 0
				ws.vyNew[i] = 0
				continue
			}

			xm := x - 1
			if xm < 0 {
				xm = 0
			}
			xp := x + 1
			if xp > g.W-1 {
				xp = g.W - 1
			}

			hxm := g.Height[y*g.W+xm] + g.Water[y*g.W+xm]
			hxp := g.Height[y*g.W+xp] + g.Water[y*g.W+xp]
			hym := g.Height[ym*g.W+x] + g.Water[ym*g.W+x]
			hyp := g.Height[yp*g.W+x] + g.Water[yp*g.W+x]

			ax := -ws.gravity * (hxp - hxm) / 2
			ay := -ws.gravity * (hyp - hym) / 2

			ws.vxNew[i] = (g.VX[i] + ax*dt) * ws.friction
			ws.vyNew[i] = (g.VY[i] + ay*dt) * ws.friction
		}
	}
}

// advect transports water into 4-neighbors along the velocity sign.
// Transfers accumulate in a scratch buffer so a cell's outflow this
// tick never feeds its own inflow; flow off the grid is discarded
// (open boundary).
func (ws *WaterSystem) advect(g *terrain.Grid) {
	for i := range ws.inflow {
		ws.inflow[i] = 0
	}

	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			i := y*g.W + x
			depth := g.Water[i]
			if depth <= 0 {
				continue
			}

			vx := g.VX[i]
			vy := g.VY[i]
			outX := ws.advectRate * depth * absf32(vx)
			outY := ws.advectRate * depth * absf32(vy)
			total := outX + outY
			if total <= 0 {
				continue
			}
			// A fast, deep cell may want to move more than it holds.
			if total > depth {
				scale := depth / total
				outX *= scale
				outY *= scale
			}

			if outX > 0 {
				tx := x + 1
				if vx < 0 {
					tx = x - 1
				}
				ws.inflow[i] -= outX
				if tx >= 0 && tx < g.W {
					ws.inflow[y*g.W+tx] += outX
				}
			}
			if outY > 0 {
				ty := y + 1
				if vy < 0 {
					ty = y - 1
				}
				ws.inflow[i] -= outY
				if ty >= 0 && ty < g.H {
					ws.inflow[ty*g.W+x] += outY
				}
			}
		}
	}

	for i := range g.Water {
		g.Water[i] += ws.inflow[i]
		if g.Water[i] < 0 {
			g.Water[i] = 0
		}
	}
}

// applyLoss removes evaporation and infiltration from wet cells.
// Evaporation scales with temperature and inversely with humidity.
func (ws *WaterSystem) applyLoss(g *terrain.Grid, dt float32, w Weather) {
	evap := ws.evapRate * dt * (w.TemperatureC / 20) * (1 - w.HumidityPct/100)
	if evap < 0 {
		evap = 0
	}
	loss := evap + ws.infilRate*dt

	for i := range g.Water {
		d := g.Water[i]
		if d <= 0 {
			continue
		}
		d -= loss
		if d < 0 {
			d = 0
		}
		g.Water[i] = d
	}
}

// cacheFlowAndSpray records the per-cell speed for erosion/rendering
// and samples spray particles from fast-moving water.
func (ws *WaterSystem) cacheFlowAndSpray(g *terrain.Grid, pool *ParticlePool) {
	for i := range g.Flow {
		speed := fastSqrt(g.VX[i]*g.VX[i] + g.VY[i]*g.VY[i])
		g.Flow[i] = speed

		if speed > ws.spraySpeed && ws.rng.Float32() < ws.sprayChance {
			x := float32(i%g.W) + ws.rng.Float32()
			y := float32(i/g.W) + ws.rng.Float32()
			pos := mgl32.Vec3{x, y, 0.02}
			vel := mgl32.Vec3{
				g.VX[i] + (ws.rng.Float32()-0.5)*0.2,
				g.VY[i] + (ws.rng.Float32()-0.5)*0.2,
				0.2 + ws.rng.Float32()*0.3,
			}
			pool.Spawn(ParticleWater, pos, vel, 1+ws.rng.Float32(), 0.8, waterColor)
		}
	}
}

// AddWater pours amount onto cell (x, y). Out-of-bounds or negative
// inputs are ignored.
func AddWater(g *terrain.Grid, x, y int, amount float32) {
	if !g.InBounds(x, y) || amount <= 0 {
		return
	}
	g.Water[y*g.W+x] += amount
}

// DrainWater removes up to amount from cell (x, y), clamping at zero.
func DrainWater(g *terrain.Grid, x, y int, amount float32) {
	if !g.InBounds(x, y) || amount <= 0 {
		return
	}
	i := y*g.W + x
	g.Water[i] -= amount
	if g.Water[i] < 0 {
		g.Water[i] = 0
	}
}

func absf32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
