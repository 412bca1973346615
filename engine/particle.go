// Package engine owns the particle pool and runs the per-step pipeline of
// spec.md §4.5: release, advection, horizontal diffusion, land check,
// vertical mixing, aging/decay, and concentration, in that order, once per
// call to Advance. It borrows the current and diffusivity field services
// through the CurrentField/DiffusivityField capability interfaces instead
// of holding concrete types, so the engine, the bake recorder, and tests
// can all substitute fakes without a shared global, in the spirit of the
// teacher's CellManipulator/DomainManipulator decoupling in run.go.
package engine

import "github.com/oceantracer/driftmap/tracer"

// historyCap is the ring-buffer capacity for Particle.History (spec.md §3:
// "bounded position history (last ≤ 8 entries)").
const historyCap = 8

// HistorySample is one ring-buffer entry recorded after a particle moves.
type HistorySample struct {
	Day   float64
	X, Y  float64
	Depth float64
}

// Particle is the Particle Record of spec.md §3. Local-plane coordinates
// (X, Y) are kilometres relative to the engine's configured reference
// point; Depth is a fraction of kilometre in [0, 1].
type Particle struct {
	ID         int
	Active     bool
	TracerID   string
	X, Y       float64
	Depth      float64
	Mass       float64 // becquerels
	InitialMass float64
	Age        float64 // days
	U, V       float64 // last-step velocity, m/s
	ReleaseDay float64
	Concentration float64

	history     [historyCap]HistorySample
	historyLen  int
	historyHead int
}

// recordHistory appends a sample to the ring buffer, evicting the oldest
// entry once historyCap is reached.
func (p *Particle) recordHistory(day float64) {
	s := HistorySample{Day: day, X: p.X, Y: p.Y, Depth: p.Depth}
	if p.historyLen < historyCap {
		p.history[p.historyLen] = s
		p.historyLen++
		return
	}
	p.history[p.historyHead] = s
	p.historyHead = (p.historyHead + 1) % historyCap
}

// History returns the recorded samples in time order, oldest first.
func (p *Particle) History() []HistorySample {
	out := make([]HistorySample, p.historyLen)
	if p.historyLen < historyCap {
		copy(out, p.history[:p.historyLen])
		return out
	}
	for i := 0; i < historyCap; i++ {
		out[i] = p.history[(p.historyHead+i)%historyCap]
	}
	return out
}

// reset clears a particle back to its inactive, pre-release state so the
// pool slot can be reused by a later release.
func (p *Particle) reset() {
	id := p.ID
	*p = Particle{ID: id}
}

// tracerOf is a small convenience used by the step pipeline.
func tracerOf(p *Particle) tracer.Tracer {
	return tracer.Lookup(p.TracerID)
}
