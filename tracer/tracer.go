// Package tracer holds the read-only catalog of radionuclide parameters
// consumed by the release manager and particle engine. Entries are
// immutable once the package is loaded, in the same spirit as the teacher
// model's chemical mechanism tables (mechanism.go's molar-mass constants).
package tracer

import (
	"fmt"
	"math"
)

// Tracer is an immutable radionuclide parameter record.
type Tracer struct {
	ID   string
	Name string

	// HalfLifeDays is the radioactive half-life in days. Zero means the
	// tracer does not decay (e.g. a conservative dye tracer).
	HalfLifeDays float64

	// DefaultInventoryPBq is the default total activity released over a
	// single default phase, in PBq.
	DefaultInventoryPBq float64

	// DiffusivityScale multiplies the field-derived horizontal diffusivity
	// for this tracer.
	DiffusivityScale float64

	// SettlingVelocity is the still-water settling velocity, m/s. Zero for
	// dissolved radionuclides.
	SettlingVelocity float64

	// SigmaH and SigmaV are the horizontal and vertical concentration
	// kernel widths, in metres.
	SigmaH float64
	SigmaV float64
}

// Decays reports whether the tracer has a finite half-life.
func (t Tracer) Decays() bool {
	return t.HalfLifeDays > 0
}

// DecayFactor returns the fraction of mass remaining after ageDays of decay.
func (t Tracer) DecayFactor(ageDays float64) float64 {
	if !t.Decays() {
		return 1
	}
	return math.Pow(0.5, ageDays/t.HalfLifeDays)
}

// DefaultTracerID is used by Lookup when an unknown id is requested.
const DefaultTracerID = "Cs-137"

// library is the required catalog of canonical half-lives (spec §4.1).
var library = map[string]Tracer{
	"Cs-137": {
		ID: "Cs-137", Name: "Caesium-137",
		HalfLifeDays:        30.1 * 365.25,
		DefaultInventoryPBq: 16.2,
		DiffusivityScale:    1.0,
		SigmaH:              10000,
		SigmaV:              20,
	},
	"Cs-134": {
		ID: "Cs-134", Name: "Caesium-134",
		HalfLifeDays:        2.06 * 365.25,
		DefaultInventoryPBq: 1.8,
		DiffusivityScale:    1.0,
		SigmaH:              10000,
		SigmaV:              20,
	},
	"I-131": {
		ID: "I-131", Name: "Iodine-131",
		HalfLifeDays:        8,
		DefaultInventoryPBq: 1.3,
		DiffusivityScale:    1.1,
		SigmaH:              8000,
		SigmaV:              15,
	},
	"Sr-90": {
		ID: "Sr-90", Name: "Strontium-90",
		HalfLifeDays:        28.8 * 365.25,
		DefaultInventoryPBq: 0.6,
		DiffusivityScale:    0.95,
		SigmaH:              10000,
		SigmaV:              20,
	},
	"H-3": {
		ID: "H-3", Name: "Tritium",
		HalfLifeDays:        12.3 * 365.25,
		DefaultInventoryPBq: 2.0,
		DiffusivityScale:    1.2,
		SigmaH:              12000,
		SigmaV:              25,
	},
}

// Lookup returns the tracer with the given id, falling back to the default
// Cs-137 entry if id is not recognized.
func Lookup(id string) Tracer {
	if t, ok := library[id]; ok {
		return t
	}
	return library[DefaultTracerID]
}

// Known returns the ids of every tracer in the catalog.
func Known() []string {
	ids := make([]string, 0, len(library))
	for id := range library {
		ids = append(ids, id)
	}
	return ids
}

// ErrUnknownTracer is returned by LookupStrict for an id with no catalog
// entry, unlike Lookup which silently falls back to the default tracer.
var ErrUnknownTracer = fmt.Errorf("tracer: unknown tracer id")

// LookupStrict returns the tracer with the given id, or ErrUnknownTracer if
// none exists. Configuration boundaries (release.Manager.SetTracer) use
// this instead of Lookup so a typo'd id is loud rather than silently
// substituted.
func LookupStrict(id string) (Tracer, error) {
	if t, ok := library[id]; ok {
		return t, nil
	}
	return Tracer{}, fmt.Errorf("%w: %q", ErrUnknownTracer, id)
}
