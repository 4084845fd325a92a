package systems

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/botsofcog/sandtable/config"
	"github.com/botsofcog/sandtable/terrain"
)

// ParticleKind identifies the type of effect particle.
type ParticleKind uint8

const (
	ParticleSand ParticleKind = iota
	ParticleWater
	ParticleRain
	ParticleSediment
	ParticleDust
)

const particleGravity = 9.81

// Particle is a fixed-size pooled record. Pos.X/Y are grid cell
// coordinates, Pos.Z is elevation above the surface.
type Particle struct {
	Pos     mgl32.Vec3
	Vel     mgl32.Vec3
	Life    float32
	MaxLife float32
	Size    float32
	Color   terrain.RGB
	Kind    ParticleKind
	Active  bool
}

// ParticlePool is a fixed-capacity particle store. Slots are never
// allocated after construction: Spawn reuses an inactive slot, or
// reclaims the live particle with the least remaining life when the
// pool is full.
type ParticlePool struct {
	particles []Particle
	freeList  []int
	count     int

	airDrag    float32 // per-tick multiplier, tuned for 60 Hz
	groundDamp float32
	windFactor float32
}

// NewParticlePool creates a pool sized by config particles.max_count.
func NewParticlePool(cfg *config.Config) *ParticlePool {
	maxCount := cfg.Particles.MaxCount
	if maxCount < 1 {
		maxCount = 1000
	}

	p := &ParticlePool{
		particles:  make([]Particle, maxCount),
		freeList:   make([]int, maxCount),
		airDrag:    float32(cfg.Particles.AirDrag),
		groundDamp: float32(cfg.Particles.GroundDamp),
		windFactor: float32(cfg.Particles.WindFactor),
	}
	// Seed the free list back-to-front so slot 0 spawns first.
	for i := range p.freeList {
		p.freeList[i] = maxCount - 1 - i
	}
	return p
}

// Cap returns the pool capacity.
func (p *ParticlePool) Cap() int {
	return len(p.particles)
}

// Count returns the number of active particles.
func (p *ParticlePool) Count() int {
	return p.count
}

// Spawn activates a slot for a new particle and returns its index.
// When no slot is free the active particle with the smallest remaining
// life is reclaimed (first in iteration order on ties), so spawning
// never fails and never allocates.
func (p *ParticlePool) Spawn(kind ParticleKind, pos, vel mgl32.Vec3, life, size float32, color terrain.RGB) int {
	var idx int
	if n := len(p.freeList); n > 0 {
		idx = p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.count++
	} else {
		idx = p.reclaim()
	}

	p.particles[idx] = Particle{
		Pos:     pos,
		Vel:     vel,
		Life:    life,
		MaxLife: life,
		Size:    size,
		Color:   color,
		Kind:    kind,
		Active:  true,
	}
	return idx
}

// reclaim returns the index of the active particle with the least
// remaining life. Only called when the pool is full, so every slot is
// active.
func (p *ParticlePool) reclaim() int {
	best := 0
	bestLife := float32(math.MaxFloat32)
	for i := range p.particles {
		if p.particles[i].Life < bestLife {
			best = i
			bestLife = p.particles[i].Life
		}
	}
	return best
}

// Deactivate releases the particle at idx back to the pool.
func (p *ParticlePool) Deactivate(idx int) {
	if !p.particles[idx].Active {
		return
	}
	p.particles[idx].Active = false
	p.freeList = append(p.freeList, idx)
	p.count--
}

// Step integrates all active particles by dt seconds: gravity on the
// vertical axis, per-tick air drag, ground contact at z=0, and wind
// forcing on dust. wx, wy is the weather wind vector as returned by
// WeatherSystem.WindVector.
func (p *ParticlePool) Step(dt float32, wx, wy float32) {
	for i := range p.particles {
		pt := &p.particles[i]
		if !pt.Active {
			continue
		}

		pt.Life -= dt
		if pt.Life <= 0 {
			pt.Active = false
			p.freeList = append(p.freeList, i)
			p.count--
			continue
		}

		if pt.Kind == ParticleDust {
			pt.Vel[0] += wx * p.windFactor * dt
			pt.Vel[1] += wy * p.windFactor * dt
		}

		pt.Vel[2] -= particleGravity * dt
		pt.Vel = pt.Vel.Mul(p.airDrag)

		pt.Pos = pt.Pos.Add(pt.Vel.Mul(dt))

		// Ground contact: stop falling, bleed lateral speed.
		if pt.Pos[2] <= 0 {
			pt.Pos[2] = 0
			pt.Vel[2] = 0
			pt.Vel[0] *= p.groundDamp
			pt.Vel[1] *= p.groundDamp
		}
	}
}

// Each calls fn for every active particle. The pointer is only valid
// during the call.
func (p *ParticlePool) Each(fn func(i int, pt *Particle)) {
	for i := range p.particles {
		if p.particles[i].Active {
			fn(i, &p.particles[i])
		}
	}
}

// At returns the particle at idx for inspection.
func (p *ParticlePool) At(idx int) *Particle {
	return &p.particles[idx]
}
