package systems

import (
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/botsofcog/sandtable/config"
	"github.com/botsofcog/sandtable/terrain"
)

// sandMove is one cell's computed redistribution for a tick: material
// leaves src and lands on up to four lower neighbors.
type sandMove struct {
	src     int32
	n       uint8
	targets [4]int32
	amounts [4]float32
}

// SandSystem relaxes slopes steeper than the angle of repose by moving
// material downhill. The pass is double-buffered: moves are computed
// against an immutable snapshot of the height field and applied to a
// scratch buffer, then blended back with a relaxation factor. A single
// pass does not fully converge; repeated ticks settle the pile.
type SandSystem struct {
	tanRepose     float32
	moveRate      float32
	moveCap       float32
	relax         float32
	particleScale float32
	particleCap   int

	scratch []float32 // next-height buffer

	numWorkers int
	moves      [][]sandMove // per-worker intent lists, reused across ticks

	rng *rand.Rand
}

var sandColor = terrain.RGB{R: 194, G: 178, B: 128}

// NewSandSystem builds the system for a grid of cfg.Derived.CellN cells.
func NewSandSystem(cfg *config.Config, seed int64) *SandSystem {
	numWorkers := runtime.GOMAXPROCS(0)
	moves := make([][]sandMove, numWorkers)
	for i := range moves {
		moves[i] = make([]sandMove, 0, 256)
	}
	return &SandSystem{
		tanRepose:     float32(math.Tan(cfg.Sand.ReposeDeg * math.Pi / 180)),
		moveRate:      float32(cfg.Sand.MoveRate),
		moveCap:       float32(cfg.Sand.MoveCap),
		relax:         float32(cfg.Sand.Relax),
		particleScale: float32(cfg.Sand.ParticleScale),
		particleCap:   cfg.Sand.ParticleCap,
		scratch:       make([]float32, cfg.Derived.CellN),
		numWorkers:    numWorkers,
		moves:         moves,
		rng:           rand.New(rand.NewSource(seed)),
	}
}

// Step runs one relaxation pass. The move rate and cap are per-tick
// design constants tuned for the 60 Hz tick, matching the particle
// drag convention. Boundary cells are never modified; the 1-cell halo
// acts as a fixed frame.
func (s *SandSystem) Step(g *terrain.Grid, pool *ParticlePool) {
	if len(s.scratch) != len(g.Height) {
		s.scratch = make([]float32, len(g.Height))
	}
	copy(s.scratch, g.Height)

	// Phase A: compute moves per interior row against the snapshot.
	// Rows are sharded across workers; each worker appends to its own
	// intent list so no shared state is written.
	interior := g.H - 2
	if interior <= 0 {
		return
	}
	rowsPerWorker := (interior + s.numWorkers - 1) / s.numWorkers

	for w := range s.moves {
		s.moves[w] = s.moves[w][:0]
	}

	var wg sync.WaitGroup
	for w := 0; w < s.numWorkers; w++ {
		startY := 1 + w*rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > g.H-1 {
			endY = g.H - 1
		}
		if startY >= g.H-1 {
			break
		}

		wg.Add(1)
		go func(worker, y0, y1 int) {
			defer wg.Done()
			s.moves[worker] = s.computeRows(g, y0, y1, s.moves[worker])
		}(w, startY, endY)
	}
	wg.Wait()

	// Stable terrain: nothing moved, leave the field bit-identical.
	total := 0
	for _, list := range s.moves {
		total += len(list)
	}
	if total == 0 {
		return
	}

	// Phase B: apply moves to the scratch buffer serially, in worker
	// order, so the result is deterministic for a given seed.
	for _, list := range s.moves {
		for i := range list {
			m := &list[i]
			var moved float32
			for k := uint8(0); k < m.n; k++ {
				amt := m.amounts[k]
				s.scratch[m.targets[k]] += amt
				moved += amt
				s.emitGrains(g, pool, m.targets[k], amt)
			}
			s.scratch[m.src] -= moved
		}
	}

	// Phase C: blend interior cells toward the relaxed field. The
	// halo keeps its exact prior values.
	keep := 1 - s.relax
	for y := 1; y < g.H-1; y++ {
		row := y * g.W
		for x := 1; x < g.W-1; x++ {
			i := row + x
			g.Height[i] = keep*g.Height[i] + s.relax*s.scratch[i]
		}
	}
}

// computeRows scans interior rows [y0, y1) and appends a move for each
// cell whose steepest neighbor slope exceeds the repose threshold.
func (s *SandSystem) computeRows(g *terrain.Grid, y0, y1 int, out []sandMove) []sandMove {
	const sqrt2 = 1.41421356

	type nb struct {
		idx int32
		h   float32
		d   float32
	}
	var nbs [8]nb

	for y := y0; y < y1; y++ {
		for x := 1; x < g.W-1; x++ {
			i := y*g.W + x
			h := g.Height[i]

			n := 0
			maxSlope := float32(0)
			for oy := -1; oy <= 1; oy++ {
				for ox := -1; ox <= 1; ox++ {
					if ox == 0 && oy == 0 {
						continue
					}
					j := (y+oy)*g.W + (x + ox)
					d := float32(1)
					if ox != 0 && oy != 0 {
						d = sqrt2
					}
					hk := g.Height[j]
					slope := (h - hk) / d
					if slope < 0 {
						slope = -slope
					}
					if slope > maxSlope {
						maxSlope = slope
					}
					nbs[n] = nb{idx: int32(j), h: hk, d: d}
					n++
				}
			}

			if maxSlope <= s.tanRepose {
				continue
			}

			// Sort neighbors ascending by height (insertion sort over
			// the fixed 8-entry array) and take the up-to-4 lowest that
			// sit below the cell.
			for a := 1; a < 8; a++ {
				v := nbs[a]
				b := a - 1
				for b >= 0 && nbs[b].h > v.h {
					nbs[b+1] = nbs[b]
					b--
				}
				nbs[b+1] = v
			}

			// Receivers must be interior cells: the halo is a fixed
			// frame and never gains or loses material.
			var chosen [4]nb
			nc := 0
			for a := 0; a < 8 && nc < 4; a++ {
				if nbs[a].h >= h {
					continue
				}
				nx := int(nbs[a].idx) % g.W
				ny := int(nbs[a].idx) / g.W
				if nx == 0 || nx == g.W-1 || ny == 0 || ny == g.H-1 {
					continue
				}
				chosen[nc] = nbs[a]
				nc++
			}
			if nc == 0 {
				continue
			}

			excess := h - chosen[0].h
			move := excess * s.moveRate
			if move > s.moveCap {
				move = s.moveCap
			}
			if move <= 0 {
				continue
			}

			var wsum float32
			var weights [4]float32
			for k := 0; k < nc; k++ {
				w := (h - chosen[k].h) / chosen[k].d
				weights[k] = w
				wsum += w
			}
			if wsum <= 0 {
				continue
			}

			m := sandMove{src: int32(i), n: uint8(nc)}
			for k := 0; k < nc; k++ {
				m.targets[k] = chosen[k].idx
				m.amounts[k] = move * weights[k] / wsum
			}
			out = append(out, m)
		}
	}
	return out
}

// emitGrains spawns sand particles for a distributed chunk of material
// landing at cell idx.
func (s *SandSystem) emitGrains(g *terrain.Grid, pool *ParticlePool, idx int32, m float32) {
	count := int(m * s.particleScale)
	if count <= 0 {
		return
	}
	if count > s.particleCap {
		count = s.particleCap
	}

	x := float32(int(idx) % g.W)
	y := float32(int(idx) / g.W)
	for k := 0; k < count; k++ {
		pos := mgl32.Vec3{
			x + s.rng.Float32(),
			y + s.rng.Float32(),
			0.05,
		}
		vel := mgl32.Vec3{
			(s.rng.Float32() - 0.5) * 0.4,
			(s.rng.Float32() - 0.5) * 0.4,
			0.5 + s.rng.Float32()*0.5,
		}
		life := 2 + s.rng.Float32()*3
		pool.Spawn(ParticleSand, pos, vel, life, 1+s.rng.Float32(), sandColor)
	}
}
