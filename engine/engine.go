package engine

import (
	"context"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/oceantracer/driftmap/release"
)

// State is the Engine's run state of spec.md §4.6's state machine:
// Idle -> start -> Running -> pause -> Paused -> resume -> Running;
// either Running or Paused -> reset -> Idle.
type State int

const (
	Idle State = iota
	Running
	Paused
)

// Engine owns the particle pool, the release schedule, and the aggregate
// statistics, and runs the per-step pipeline described in spec.md §4.5
// and ordered in §5: release -> advection -> diffusion -> land check ->
// vertical mixing -> aging+decay -> concentration -> history.
type Engine struct {
	cfg        Config
	release_   *release.Manager
	currentF   CurrentField
	diffField  DiffusivityField

	particles []Particle
	simDay    float64
	state     State
	stats     Stats

	integrator Integrator
	rk4Fallback Integrator

	src        rand.Source
	normal     distuv.Normal
	standard   distuv.Normal
}

// New constructs an Engine bound to the given release manager and field
// services. The particle pool is allocated with cfg.PoolSize inactive
// slots; call Start to enter the Running state.
func New(cfg Config, mgr *release.Manager, currentF CurrentField, diffField DiffusivityField) *Engine {
	cfg = cfg.withDefaults()
	seed := cfg.RandSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src := rand.NewSource(int64(seed))

	e := &Engine{
		cfg:         cfg,
		release_:    mgr,
		currentF:    currentF,
		diffField:   diffField,
		particles:   make([]Particle, cfg.PoolSize),
		src:         src,
		rk4Fallback: EulerIntegrator{},
	}
	for i := range e.particles {
		e.particles[i].ID = i
	}
	e.normal = distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	e.standard = distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	if cfg.RK4.Enabled {
		e.integrator = RK4Integrator{Cfg: cfg.RK4}
	} else {
		e.integrator = EulerIntegrator{}
	}
	return e
}

// State returns the engine's current run state.
func (e *Engine) State() State { return e.state }

// Stats returns a copy of the current aggregate counters.
func (e *Engine) Stats() Stats { return e.stats }

// SimDay returns the current simulation day.
func (e *Engine) SimDay() float64 { return e.simDay }

// Particles returns the live particle slice. Callers must not retain it
// across an Advance call; take a Snapshot (bake package) for that.
func (e *Engine) Particles() []Particle { return e.particles }

// Start transitions Idle -> Running. It is a no-op from any other state.
func (e *Engine) Start() {
	if e.state == Idle {
		e.state = Running
	}
}

// Pause transitions Running -> Paused.
func (e *Engine) Pause() {
	if e.state == Running {
		e.state = Paused
	}
}

// Resume transitions Paused -> Running.
func (e *Engine) Resume() {
	if e.state == Paused {
		e.state = Running
	}
}

// Reset clears the pool, zeros the stats, and returns to Idle from
// Running or Paused.
func (e *Engine) Reset() {
	if e.state != Running && e.state != Paused {
		return
	}
	for i := range e.particles {
		e.particles[i].reset()
		e.particles[i].ID = i
	}
	e.simDay = 0
	e.stats = Stats{}
	e.state = Idle
}

// Release activates up to n inactive particles directly, bypassing the
// release-manager schedule. It is exported for tests and for the bake
// recorder's scripted scenarios.
func (e *Engine) Release(n int) int {
	return e.release(n)
}

// Advance runs one pipeline step of deltaDays simulated days. It is a
// no-op unless the engine is Running, per spec.md §4.6's state machine.
func (e *Engine) Advance(ctx context.Context, deltaDays float64) {
	if e.state != Running {
		return
	}
	if e.release_ != nil {
		e.continuousRelease(deltaDays)
	}

	dayOfYear := int(e.simDay) % 365
	winter := isWinter(dayOfYear)

	refLon, refLat := e.refPoint()
	e.prefetchDepthBuckets(ctx, refLon, refLat, e.simDay)

	active := 0
	for i := range e.particles {
		p := &e.particles[i]
		if !p.Active {
			continue
		}
		e.stepParticle(ctx, p, deltaDays, winter)
		if p.Active {
			active++
		}
	}
	e.stats.ActiveParticles = active
	e.simDay += deltaDays
	e.stats.SimulationDays = e.simDay
}

// refPoint returns the engine's local-plane reference.
func (e *Engine) refPoint() (lon, lat float64) {
	return e.cfg.ReferenceLon, e.cfg.ReferenceLat
}
