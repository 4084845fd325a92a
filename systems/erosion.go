package systems

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/botsofcog/sandtable/config"
	"github.com/botsofcog/sandtable/terrain"
)

// ErosionSystem couples water flow speed to terrain removal. Carved
// material shows up as sediment particles drifting with the current;
// the height field is deliberately left unclamped here and restored to
// its invariant range at tick end.
type ErosionSystem struct {
	rate              float32
	minDepth          float32
	particleThreshold float32
	particleCap       int

	rng *rand.Rand
}

var sedimentColor = terrain.RGB{R: 150, G: 120, B: 90}

// NewErosionSystem builds the system from config erosion parameters.
func NewErosionSystem(cfg *config.Config, seed int64) *ErosionSystem {
	return &ErosionSystem{
		rate:              float32(cfg.Erosion.Rate),
		minDepth:          float32(cfg.Erosion.MinDepth),
		particleThreshold: float32(cfg.Erosion.ParticleThreshold),
		particleCap:       cfg.Erosion.ParticleCap,
		rng:               rand.New(rand.NewSource(seed)),
	}
}

// Step erodes every cell carrying enough water, proportional to flow
// speed and depth.
func (es *ErosionSystem) Step(g *terrain.Grid, dt float32, pool *ParticlePool) {
	for i := range g.Water {
		depth := g.Water[i]
		if depth <= es.minDepth {
			continue
		}

		erode := es.rate * g.Flow[i] * depth * dt
		if erode <= 0 {
			continue
		}
		g.Height[i] -= erode

		if erode > es.particleThreshold {
			es.emitSediment(g, pool, i)
		}
	}
}

// emitSediment spawns sediment particles at cell i moving at half the
// local water velocity.
func (es *ErosionSystem) emitSediment(g *terrain.Grid, pool *ParticlePool, i int) {
	count := 1 + es.rng.Intn(es.particleCap)
	x := float32(i % g.W)
	y := float32(i / g.W)

	for k := 0; k < count; k++ {
		pos := mgl32.Vec3{
			x + es.rng.Float32(),
			y + es.rng.Float32(),
			0.01,
		}
		vel := mgl32.Vec3{g.VX[i] * 0.5, g.VY[i] * 0.5, 0}
		pool.Spawn(ParticleSediment, pos, vel, 1.5+es.rng.Float32(), 0.6, sedimentColor)
	}
}
