// Package release implements the multi-phase emission schedule and
// per-particle activity calibration described in spec.md §4.2. It has no
// dependency on the particle engine: the engine calls RateAtGBq/
// ParticleActivity and advances the manager's fractional accumulator
// through AddFraction, keeping the manager a pure calibration model in
// the same spirit as the teacher's release-rate bookkeeping in run.go's
// polConv tables — a small, dependency-free lookup the engine drives.
package release

import (
	"fmt"

	"github.com/oceantracer/driftmap/tracer"
)

// Manager holds the active tracer selection, the ordered phase schedule,
// and the sub-integer particle-emission carry the engine accumulates
// between calls to continuous release.
type Manager struct {
	tracerID string
	phases   []Phase

	// accumulator is the fractional_particle_accumulator of spec.md §3,
	// always kept in [0, 1).
	accumulator float64
}

// NewManager creates a manager bound to the given tracer id. It does not
// seed a default phase; call AddDefaultPhase or SetPhases explicitly.
func NewManager(tracerID string) (*Manager, error) {
	m := &Manager{}
	if err := m.SetTracer(tracerID); err != nil {
		return nil, err
	}
	return m, nil
}

// SetTracer rebinds the manager to a different tracer. Unlike tracer.Lookup,
// this is a configuration boundary, so an unknown id is rejected loudly
// instead of silently falling back to the default tracer.
func (m *Manager) SetTracer(id string) error {
	if _, err := tracer.LookupStrict(id); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	m.tracerID = id
	return nil
}

// Tracer returns the currently bound tracer record.
func (m *Manager) Tracer() tracer.Tracer {
	return tracer.Lookup(m.tracerID)
}

// AddDefaultPhase seeds a single phase covering [0, 30] days at the
// tracer's default inventory, in PBq.
func (m *Manager) AddDefaultPhase() error {
	t := m.Tracer()
	return m.SetPhases([]Phase{{Start: 0, End: 30, Total: t.DefaultInventoryPBq, Unit: PBq}})
}

// SetPhases replaces the release schedule wholesale. It fails without
// applying anything if any phase is malformed or any two phases overlap.
func (m *Manager) SetPhases(phases []Phase) error {
	for _, p := range phases {
		if !p.valid() {
			return fmt.Errorf("%w: %w (start=%g end=%g)", ErrInvalidConfiguration, ErrInvalidPhase, p.Start, p.End)
		}
	}
	for i := range phases {
		for j := i + 1; j < len(phases); j++ {
			if phases[i].overlaps(phases[j]) {
				return fmt.Errorf("%w: %w (phase %d [%g,%g) vs phase %d [%g,%g))",
					ErrInvalidConfiguration, ErrOverlappingPhases,
					i, phases[i].Start, phases[i].End,
					j, phases[j].Start, phases[j].End)
			}
		}
	}
	cp := make([]Phase, len(phases))
	copy(cp, phases)
	m.phases = cp
	return nil
}

// Phases returns a copy of the current schedule.
func (m *Manager) Phases() []Phase {
	cp := make([]Phase, len(m.phases))
	copy(cp, m.phases)
	return cp
}

// activePhase returns the first phase (in declaration order) containing
// day, or false if none does. SetPhases rejects overlap, so the only day
// that can match two phases is an endpoint shared by adjacent phases; the
// earlier-declared phase wins there.
func (m *Manager) activePhase(day float64) (Phase, bool) {
	for _, p := range m.phases {
		if p.contains(day) {
			return p, true
		}
	}
	return Phase{}, false
}

// RateAt returns the emission rate, in the phase's own declared unit per
// day, for the phase active at day, or 0 if no phase is active.
func (m *Manager) RateAt(day float64) float64 {
	p, ok := m.activePhase(day)
	if !ok {
		return 0
	}
	return p.rateInUnit()
}

// RateAtGBq returns the emission rate active at day, converted to GBq/day.
func (m *Manager) RateAtGBq(day float64) float64 {
	p, ok := m.activePhase(day)
	if !ok {
		return 0
	}
	return p.rateInUnit() * p.Unit.perGBq()
}

// TotalReleaseGBq returns the sum, over every phase, of each phase's total
// converted to GBq.
func (m *Manager) TotalReleaseGBq() float64 {
	var total float64
	for _, p := range m.phases {
		total += p.totalGBq()
	}
	return total
}

// ParticleActivity returns the mass, in GBq, assigned to each particle in
// a pool of size nParticles so that the pool's total mass equals
// TotalReleaseGBq. nParticles must be positive.
func (m *Manager) ParticleActivity(nParticles int) (float64, error) {
	if nParticles <= 0 {
		return 0, fmt.Errorf("%w: particle pool size must be positive, got %d", ErrInvalidConfiguration, nParticles)
	}
	return m.TotalReleaseGBq() / float64(nParticles), nil
}

// AddFraction adds df to the fractional accumulator and returns the whole
// number of particles it now authorizes, subtracting that integer back out
// so the accumulator stays in [0, 1). This is the "carry" mechanic spec.md
// §3 requires for continuous_release.
func (m *Manager) AddFraction(df float64) int {
	m.accumulator += df
	n := int(m.accumulator)
	m.accumulator -= float64(n)
	return n
}

// Accumulator returns the current fractional carry, for snapshotting/tests.
func (m *Manager) Accumulator() float64 {
	return m.accumulator
}
