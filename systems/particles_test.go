package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botsofcog/sandtable/terrain"
)

const testDT = float32(1.0 / 60.0)

func TestPoolCapacityNeverExceeded(t *testing.T) {
	cfg := testCfg(t, 10, 10)
	pool := NewParticlePool(cfg)
	capacity := pool.Cap()

	// Flood the pool with far more spawn requests than slots.
	for i := 0; i < 10000; i++ {
		pool.Spawn(ParticleSand, mgl32.Vec3{1, 1, 0}, mgl32.Vec3{}, 1+float32(i%7), 1, terrain.RGB{})
	}

	assert.LessOrEqual(t, pool.Count(), capacity)
	assert.Equal(t, capacity, pool.Count(), "a flooded pool should be exactly full")

	// Every slot the iterator yields is active.
	seen := 0
	pool.Each(func(i int, p *Particle) {
		require.True(t, p.Active)
		seen++
	})
	assert.Equal(t, capacity, seen)
}

func TestPoolReclaimsSmallestLife(t *testing.T) {
	cfg := testCfg(t, 10, 10)
	cfg.Particles.MaxCount = 3
	pool := NewParticlePool(cfg)

	pool.Spawn(ParticleSand, mgl32.Vec3{}, mgl32.Vec3{}, 5, 1, terrain.RGB{})
	shortest := pool.Spawn(ParticleSand, mgl32.Vec3{}, mgl32.Vec3{}, 1, 1, terrain.RGB{})
	pool.Spawn(ParticleSand, mgl32.Vec3{}, mgl32.Vec3{}, 3, 1, terrain.RGB{})
	require.Equal(t, 3, pool.Count())

	// Full pool: the next spawn evicts the particle with the least
	// remaining life.
	idx := pool.Spawn(ParticleWater, mgl32.Vec3{}, mgl32.Vec3{}, 9, 1, terrain.RGB{})
	assert.Equal(t, shortest, idx)
	assert.Equal(t, ParticleWater, pool.At(idx).Kind)
	assert.Equal(t, float32(9), pool.At(idx).Life)
	assert.Equal(t, 3, pool.Count())
}

func TestPoolReclaimTieBreaksFirst(t *testing.T) {
	cfg := testCfg(t, 10, 10)
	cfg.Particles.MaxCount = 2
	pool := NewParticlePool(cfg)

	a := pool.Spawn(ParticleSand, mgl32.Vec3{}, mgl32.Vec3{}, 2, 1, terrain.RGB{})
	pool.Spawn(ParticleSand, mgl32.Vec3{}, mgl32.Vec3{}, 2, 1, terrain.RGB{})

	idx := pool.Spawn(ParticleDust, mgl32.Vec3{}, mgl32.Vec3{}, 1, 1, terrain.RGB{})
	assert.Equal(t, a, idx, "equal lives reclaim the first slot in iteration order")
}

func TestParticleIntegration(t *testing.T) {
	cfg := testCfg(t, 10, 10)
	pool := NewParticlePool(cfg)

	idx := pool.Spawn(ParticleSand, mgl32.Vec3{5, 5, 1}, mgl32.Vec3{1, 0, 0}, 10, 1, terrain.RGB{})
	pool.Step(testDT, 0, 0)

	p := pool.At(idx)
	assert.True(t, p.Active)
	assert.Less(t, p.Life, float32(10))
	assert.Greater(t, p.Pos[0], float32(5), "lateral velocity moves the particle")
	assert.Less(t, p.Vel[2], float32(0), "gravity pulls the vertical velocity down")
	assert.Less(t, p.Vel[0], float32(1), "air drag bleeds speed")
}

func TestParticleGroundContact(t *testing.T) {
	cfg := testCfg(t, 10, 10)
	pool := NewParticlePool(cfg)

	idx := pool.Spawn(ParticleSediment, mgl32.Vec3{2, 2, 0.001}, mgl32.Vec3{2, 0, -5}, 10, 1, terrain.RGB{})
	pool.Step(testDT, 0, 0)

	p := pool.At(idx)
	assert.Equal(t, float32(0), p.Pos[2], "ground contact clamps z")
	assert.Equal(t, float32(0), p.Vel[2], "ground contact zeroes vertical velocity")
	assert.Less(t, p.Vel[0], float32(2)*0.98, "ground contact damps lateral velocity")
}

func TestParticleExpiry(t *testing.T) {
	cfg := testCfg(t, 10, 10)
	pool := NewParticlePool(cfg)

	pool.Spawn(ParticleRain, mgl32.Vec3{1, 1, 2}, mgl32.Vec3{}, 0.02, 1, terrain.RGB{})
	require.Equal(t, 1, pool.Count())

	pool.Step(testDT, 0, 0)
	pool.Step(testDT, 0, 0)
	assert.Equal(t, 0, pool.Count(), "expired particle returns its slot")

	// The freed slot is immediately reusable.
	pool.Spawn(ParticleDust, mgl32.Vec3{}, mgl32.Vec3{}, 1, 1, terrain.RGB{})
	assert.Equal(t, 1, pool.Count())
}

func TestDustFeelsWind(t *testing.T) {
	cfg := testCfg(t, 10, 10)
	pool := NewParticlePool(cfg)

	dust := pool.Spawn(ParticleDust, mgl32.Vec3{5, 5, 1}, mgl32.Vec3{}, 10, 1, terrain.RGB{})
	sand := pool.Spawn(ParticleSand, mgl32.Vec3{5, 5, 1}, mgl32.Vec3{}, 10, 1, terrain.RGB{})

	pool.Step(testDT, 12, 0)

	assert.Greater(t, pool.At(dust).Vel[0], float32(0), "wind pushes dust")
	assert.Equal(t, float32(0), pool.At(sand).Vel[0], "wind leaves other kinds alone")
}
