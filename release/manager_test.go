package release

import (
	"errors"
	"testing"
)

func mustManager(t *testing.T, id string) *Manager {
	t.Helper()
	m, err := NewManager(id)
	if err != nil {
		t.Fatalf("NewManager(%q) error = %v", id, err)
	}
	return m
}

func TestSetPhasesRejectsBadInterval(t *testing.T) {
	m := mustManager(t, "Cs-137")
	err := m.SetPhases([]Phase{{Start: 10, End: 10, Total: 1, Unit: PBq}})
	if !errors.Is(err, ErrInvalidConfiguration) || !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("SetPhases error = %v, want InvalidConfiguration+InvalidPhase", err)
	}
	if len(m.Phases()) != 0 {
		t.Error("SetPhases must not partially apply on failure")
	}
}

func TestSetPhasesRejectsOverlap(t *testing.T) {
	m := mustManager(t, "Cs-137")
	err := m.SetPhases([]Phase{
		{Start: 0, End: 10, Total: 1, Unit: PBq},
		{Start: 5, End: 15, Total: 1, Unit: PBq},
	})
	if !errors.Is(err, ErrOverlappingPhases) {
		t.Fatalf("SetPhases error = %v, want ErrOverlappingPhases", err)
	}
}

func TestRateAtBoundaries(t *testing.T) {
	m := mustManager(t, "Cs-137")
	if err := m.SetPhases([]Phase{{Start: 0, End: 30, Total: 300, Unit: GBq}}); err != nil {
		t.Fatal(err)
	}
	if m.RateAt(0) <= 0 {
		t.Error("RateAt(start) should be > 0")
	}
	if m.RateAt(30) <= 0 {
		t.Error("RateAt(end) should be > 0")
	}
	if m.RateAt(30 + 1e-9) != 0 {
		t.Error("RateAt(end+epsilon) should be 0")
	}
	if got, want := m.RateAt(0), 10.0; got != want {
		t.Errorf("RateAt(0) = %v, want %v", got, want)
	}
}

func TestTotalReleaseInGBqUnitConversion(t *testing.T) {
	m := mustManager(t, "Cs-137")
	if err := m.SetPhases([]Phase{
		{Start: 0, End: 10, Total: 1, Unit: GBq},
		{Start: 10, End: 20, Total: 1, Unit: TBq},
		{Start: 20, End: 30, Total: 1, Unit: PBq},
	}); err != nil {
		t.Fatal(err)
	}
	want := 1 + 1e3 + 1e6
	if got := m.TotalReleaseGBq(); got != want {
		t.Errorf("TotalReleaseGBq() = %v, want %v", got, want)
	}
}

func TestParticleActivityCalibration(t *testing.T) {
	m := mustManager(t, "Cs-137")
	if err := m.SetPhases([]Phase{{Start: 0, End: 30, Total: 16.2, Unit: PBq}}); err != nil {
		t.Fatal(err)
	}
	const pool = 10000
	activity, err := m.ParticleActivity(pool)
	if err != nil {
		t.Fatal(err)
	}
	gotTotal := activity * pool
	wantTotal := m.TotalReleaseGBq()
	if diff := gotTotal - wantTotal; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("activity*pool = %v, want %v", gotTotal, wantTotal)
	}
}

func TestParticleActivityRejectsNonPositivePool(t *testing.T) {
	m := mustManager(t, "Cs-137")
	if _, err := m.ParticleActivity(0); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("ParticleActivity(0) error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestAccumulatorCarry(t *testing.T) {
	m := mustManager(t, "Cs-137")
	if n := m.AddFraction(0.4); n != 0 {
		t.Errorf("AddFraction(0.4) = %d, want 0", n)
	}
	if n := m.AddFraction(0.4); n != 0 {
		t.Errorf("second AddFraction(0.4) = %d, want 0 (accumulator=0.8)", n)
	}
	if n := m.AddFraction(0.4); n != 1 {
		t.Errorf("third AddFraction(0.4) = %d, want 1 (accumulator rolled over)", n)
	}
	if acc := m.Accumulator(); acc < 0 || acc >= 1 {
		t.Errorf("accumulator = %v, want in [0,1)", acc)
	}
}
