package tracer

import (
	"errors"
	"testing"
)

func TestLookupFallback(t *testing.T) {
	got := Lookup("not-a-real-isotope")
	if got.ID != DefaultTracerID {
		t.Errorf("Lookup of unknown id = %q, want fallback %q", got.ID, DefaultTracerID)
	}
}

func TestLookupKnown(t *testing.T) {
	for _, id := range []string{"Cs-137", "Cs-134", "I-131", "Sr-90", "H-3"} {
		tr := Lookup(id)
		if tr.ID != id {
			t.Errorf("Lookup(%q).ID = %q", id, tr.ID)
		}
		if tr.HalfLifeDays <= 0 && id != "H-3-stable-variant" {
			t.Errorf("Lookup(%q).HalfLifeDays = %v, want > 0", id, tr.HalfLifeDays)
		}
	}
}

func TestLookupStrictUnknown(t *testing.T) {
	_, err := LookupStrict("Pu-239")
	if !errors.Is(err, ErrUnknownTracer) {
		t.Errorf("LookupStrict error = %v, want wrapping ErrUnknownTracer", err)
	}
}

func TestDecayFactor(t *testing.T) {
	cs137 := Lookup("Cs-137")
	const tol = 1e-9
	got := cs137.DecayFactor(cs137.HalfLifeDays)
	if got < 0.5-tol || got > 0.5+tol {
		t.Errorf("DecayFactor(halfLife) = %v, want 0.5", got)
	}
	tritium := Tracer{HalfLifeDays: 0}
	if tritium.DecayFactor(100) != 1 {
		t.Errorf("zero half-life tracer should not decay")
	}
}
