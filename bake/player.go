package bake

import (
	"context"
	"math"
	"time"
)

// Player replays a recorded vector of snapshots, interpolating
// particle-by-particle between the bracketing pair for any requested
// day, per spec.md §4.6.
type Player struct {
	snapshots []Snapshot
}

// NewPlayer loads a vector of snapshots, ordered by day (as Bake
// produces them).
func NewPlayer(snapshots []Snapshot) *Player {
	return &Player{snapshots: snapshots}
}

// Snapshots returns the loaded snapshot vector.
func (pl *Player) Snapshots() []Snapshot { return pl.snapshots }

// LastDay returns the day of the final snapshot, or 0 if none are loaded.
func (pl *Player) LastDay() float64 {
	if len(pl.snapshots) == 0 {
		return 0
	}
	return pl.snapshots[len(pl.snapshots)-1].Day
}

// bracket locates the interval (S_i, S_{i+1}) with S_i.day <= day <=
// S_{i+1}.day. A day before the first snapshot clamps to the first;
// a day at or after the last clamps to the last snapshot (returned as
// both ends, with t=0).
func (pl *Player) bracket(day float64) (lo, hi Snapshot, t float64) {
	n := len(pl.snapshots)
	if n == 0 {
		return Snapshot{}, Snapshot{}, 0
	}
	if day <= pl.snapshots[0].Day {
		return pl.snapshots[0], pl.snapshots[0], 0
	}
	if day >= pl.snapshots[n-1].Day {
		return pl.snapshots[n-1], pl.snapshots[n-1], 0
	}
	for i := 0; i < n-1; i++ {
		if pl.snapshots[i].Day <= day && day <= pl.snapshots[i+1].Day {
			span := pl.snapshots[i+1].Day - pl.snapshots[i].Day
			if span <= 0 {
				return pl.snapshots[i], pl.snapshots[i+1], 0
			}
			return pl.snapshots[i], pl.snapshots[i+1], (day - pl.snapshots[i].Day) / span
		}
	}
	return pl.snapshots[n-1], pl.snapshots[n-1], 0
}

// Seek interpolates the particle ensemble at day, pairing particles by
// index up to the shorter of the two bracketing snapshots' lengths, per
// spec.md §4.6's per-field interpolation rules.
func (pl *Player) Seek(day float64) []ParticleRecord {
	lo, hi, t := pl.bracket(day)
	n := len(lo.Particles)
	if len(hi.Particles) < n {
		n = len(hi.Particles)
	}
	out := make([]ParticleRecord, n)
	for i := 0; i < n; i++ {
		out[i] = interpolateParticle(lo.Particles[i], hi.Particles[i], t)
	}
	return out
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// interpolateParticle applies spec.md §4.6's field-by-field rules:
// position/depth linear, concentration log-linear when both endpoints
// are positive else linear, mass/age linear, history from the nearer
// endpoint.
func interpolateParticle(a, b ParticleRecord, t float64) ParticleRecord {
	out := ParticleRecord{
		X:     lerp(a.X, b.X, t),
		Y:     lerp(a.Y, b.Y, t),
		Depth: lerp(a.Depth, b.Depth, t),
		Mass:  lerp(a.Mass, b.Mass, t),
		Age:   lerp(a.Age, b.Age, t),
	}
	if a.Concentration > 0 && b.Concentration > 0 {
		logA, logB := math.Log(a.Concentration), math.Log(b.Concentration)
		out.Concentration = math.Exp(lerp(logA, logB, t))
	} else {
		out.Concentration = lerp(a.Concentration, b.Concentration, t)
	}
	if t < 0.5 {
		out.History = a.History
	} else {
		out.History = b.History
	}
	return out
}

// Frame is the event Play emits on every playback tick.
type Frame struct {
	Day       float64
	Particles []ParticleRecord
}

// Play advances a playhead at playbackSpeed simulation-days per
// wall-clock second, invoking onFrame on every tick, until the last
// snapshot's day is reached or ctx is cancelled. It clamps at the last
// snapshot's day and stops rather than looping.
func Play(ctx context.Context, pl *Player, playbackSpeed float64, tick time.Duration, onFrame func(Frame)) {
	if playbackSpeed <= 0 || tick <= 0 {
		return
	}
	day := 0.0
	if len(pl.snapshots) > 0 {
		day = pl.snapshots[0].Day
	}
	last := pl.LastDay()
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	onFrame(Frame{Day: day, Particles: pl.Seek(day)})
	for day < last {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			day += playbackSpeed * tick.Seconds()
			if day > last {
				day = last
			}
			onFrame(Frame{Day: day, Particles: pl.Seek(day)})
		}
	}
}
