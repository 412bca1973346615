// Package bake implements the headless Bake Recorder and the Play
// replay reader of spec.md §4.6: a fixed-step (h=0.1 day) run of the
// particle engine that captures deep-copied ensemble snapshots at a
// configured cadence, later interpolated frame-by-frame for playback.
package bake

import "github.com/oceantracer/driftmap/engine"

// snapshotHistoryLen is spec.md §3's Snapshot record width: "last-5
// history", narrower than the live Particle's 8-entry ring buffer.
const snapshotHistoryLen = 5

// ParticleRecord is one particle's state captured into a Snapshot, per
// spec.md §3's Snapshot definition (x, y, depth, concentration, mass,
// age, last-5 history).
type ParticleRecord struct {
	X, Y          float64
	Depth         float64
	Concentration float64
	Mass          float64
	Age           float64
	History       []engine.HistorySample
}

// Snapshot is a deep copy of the active ensemble at one simulation day,
// plus the engine's aggregate stats at that moment.
type Snapshot struct {
	Day           float64
	ParticleCount int
	Stats         engine.Stats
	Particles     []ParticleRecord
}

// captureSnapshot deep-copies the engine's current active particles and
// stats into a Snapshot. Inactive particles are omitted: spec.md §4.6
// defines a snapshot as covering the active ensemble.
func captureSnapshot(day float64, eng *engine.Engine) Snapshot {
	live := eng.Particles()
	records := make([]ParticleRecord, 0, len(live))
	for i := range live {
		p := &live[i]
		if !p.Active {
			continue
		}
		h := p.History()
		if len(h) > snapshotHistoryLen {
			h = h[len(h)-snapshotHistoryLen:]
		}
		hCopy := make([]engine.HistorySample, len(h))
		copy(hCopy, h)
		records = append(records, ParticleRecord{
			X: p.X, Y: p.Y, Depth: p.Depth,
			Concentration: p.Concentration,
			Mass:          p.Mass,
			Age:           p.Age,
			History:       hCopy,
		})
	}
	return Snapshot{
		Day:           day,
		ParticleCount: len(records),
		Stats:         eng.Stats(),
		Particles:     records,
	}
}
