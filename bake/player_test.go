package bake

import (
	"math"
	"testing"

	"github.com/oceantracer/driftmap/engine"
)

func mkSnapshot(day float64, particles ...ParticleRecord) Snapshot {
	return Snapshot{Day: day, ParticleCount: len(particles), Particles: particles}
}

// TestSeekLinearFields checks position, depth, mass, and age interpolate
// linearly between bracketing snapshots, per spec.md §4.6.
func TestSeekLinearFields(t *testing.T) {
	a := ParticleRecord{X: 0, Y: 0, Depth: 0, Mass: 100, Age: 0, Concentration: 0}
	b := ParticleRecord{X: 10, Y: 20, Depth: 5, Mass: 50, Age: 10, Concentration: 0}
	pl := NewPlayer([]Snapshot{mkSnapshot(0, a), mkSnapshot(10, b)})

	got := pl.Seek(5)[0]
	if !almostEqual(got.X, 5) || !almostEqual(got.Y, 10) || !almostEqual(got.Depth, 2.5) {
		t.Fatalf("position/depth not linear: %+v", got)
	}
	if !almostEqual(got.Mass, 75) || !almostEqual(got.Age, 5) {
		t.Fatalf("mass/age not linear: %+v", got)
	}
}

// TestSeekConcentrationLogLinear checks concentration interpolates in
// log-space when both endpoints are positive.
func TestSeekConcentrationLogLinear(t *testing.T) {
	a := ParticleRecord{Concentration: 100}
	b := ParticleRecord{Concentration: 1}
	pl := NewPlayer([]Snapshot{mkSnapshot(0, a), mkSnapshot(10, b)})

	got := pl.Seek(5)[0].Concentration
	want := math.Exp((math.Log(100) + math.Log(1)) / 2)
	if !almostEqual(got, want) {
		t.Fatalf("Concentration = %v, want %v (log-linear midpoint)", got, want)
	}
}

// TestSeekConcentrationFallsBackToLinear checks the linear fallback when
// either endpoint is non-positive (log-linear is undefined there).
func TestSeekConcentrationFallsBackToLinear(t *testing.T) {
	a := ParticleRecord{Concentration: 0}
	b := ParticleRecord{Concentration: 10}
	pl := NewPlayer([]Snapshot{mkSnapshot(0, a), mkSnapshot(10, b)})

	got := pl.Seek(5)[0].Concentration
	if !almostEqual(got, 5) {
		t.Fatalf("Concentration = %v, want 5 (linear fallback)", got)
	}
}

// TestSeekHistoryNearerEndpoint checks the replayed history snapshot is
// taken from whichever bracketing endpoint is nearer in time: t<0.5
// takes the earlier snapshot's history, t>=0.5 takes the later one's.
func TestSeekHistoryNearerEndpoint(t *testing.T) {
	histA := []engine.HistorySample{{Day: 0, X: 1, Y: 1, Depth: 0}}
	histB := []engine.HistorySample{{Day: 10, X: 9, Y: 9, Depth: 1}}
	a := ParticleRecord{History: histA}
	b := ParticleRecord{History: histB}
	pl := NewPlayer([]Snapshot{mkSnapshot(0, a), mkSnapshot(10, b)})

	near := pl.Seek(3)[0]
	if len(near.History) != 1 || near.History[0].X != 1 {
		t.Fatalf("t=0.3: History = %+v, want a's history (nearer endpoint)", near.History)
	}
	far := pl.Seek(7)[0]
	if len(far.History) != 1 || far.History[0].X != 9 {
		t.Fatalf("t=0.7: History = %+v, want b's history (nearer endpoint)", far.History)
	}
}

// TestSeekBeforeFirstClampsToFirst checks a day before the earliest
// snapshot clamps rather than extrapolating.
func TestSeekBeforeFirstClampsToFirst(t *testing.T) {
	a := ParticleRecord{X: 5}
	b := ParticleRecord{X: 50}
	pl := NewPlayer([]Snapshot{mkSnapshot(10, a), mkSnapshot(20, b)})

	got := pl.Seek(0)[0]
	if !almostEqual(got.X, 5) {
		t.Fatalf("Seek before first = %v, want clamp to first snapshot's X=5", got.X)
	}
}

// TestSeekAfterLastClampsToLast checks a day past the final snapshot
// clamps rather than extrapolating.
func TestSeekAfterLastClampsToLast(t *testing.T) {
	a := ParticleRecord{X: 5}
	b := ParticleRecord{X: 50}
	pl := NewPlayer([]Snapshot{mkSnapshot(10, a), mkSnapshot(20, b)})

	got := pl.Seek(100)[0]
	if !almostEqual(got.X, 50) {
		t.Fatalf("Seek after last = %v, want clamp to last snapshot's X=50", got.X)
	}
}
