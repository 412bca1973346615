package bake

import (
	"fmt"
	"io"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/oceantracer/driftmap/engine"
	"github.com/oceantracer/driftmap/internal/xerrors"
)

// ArchiveVersion is the snapshot-archive document version of spec.md §6.
const ArchiveVersion = 1

// ArchiveMetadata is the archive's metadata block.
type ArchiveMetadata struct {
	SimStart  float64 `toml:"sim_start"`
	SimEnd    float64 `toml:"sim_end"`
	TotalDays float64 `toml:"total_days"`
	Tracer    string  `toml:"tracer"`
}

// ArchiveHistorySample mirrors engine.HistorySample for the TOML encoding.
type ArchiveHistorySample struct {
	Day   float64 `toml:"day"`
	X     float64 `toml:"x"`
	Y     float64 `toml:"y"`
	Depth float64 `toml:"depth"`
}

// ArchiveParticle mirrors ParticleRecord for the TOML encoding.
type ArchiveParticle struct {
	X             float64                `toml:"x"`
	Y             float64                `toml:"y"`
	Depth         float64                `toml:"depth"`
	Concentration float64                `toml:"concentration"`
	Mass          float64                `toml:"mass"`
	Age           float64                `toml:"age"`
	History       []ArchiveHistorySample `toml:"history"`
}

// ArchiveStats mirrors engine.Stats for the TOML encoding.
type ArchiveStats struct {
	TotalReleased    int     `toml:"total_released"`
	TotalDecayed     int     `toml:"total_decayed"`
	MaxConcentration float64 `toml:"max_concentration"`
	MaxDepthReached  float64 `toml:"max_depth_reached"`
	ParticlesOnLand  int     `toml:"particles_on_land"`
	ActiveParticles  int     `toml:"active_particles"`
	SimulationDays   float64 `toml:"simulation_days"`
}

// ArchiveSnapshot mirrors Snapshot for the TOML encoding.
type ArchiveSnapshot struct {
	Day           float64           `toml:"day"`
	ParticleCount int               `toml:"particle_count"`
	Stats         ArchiveStats      `toml:"stats"`
	Particles     []ArchiveParticle `toml:"particles"`
}

// Archive is the snapshot archive text document of spec.md §6, the only
// persisted state in the system.
type Archive struct {
	Version   int               `toml:"version"`
	Timestamp string            `toml:"timestamp"`
	Metadata  ArchiveMetadata   `toml:"metadata"`
	Snapshots []ArchiveSnapshot `toml:"snapshots"`
}

// NewArchive builds an Archive from a recorded snapshot vector.
func NewArchive(snapshots []Snapshot, tracerID string) Archive {
	a := Archive{
		Version:   ArchiveVersion,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Snapshots: make([]ArchiveSnapshot, len(snapshots)),
	}
	if len(snapshots) > 0 {
		a.Metadata = ArchiveMetadata{
			SimStart:  snapshots[0].Day,
			SimEnd:    snapshots[len(snapshots)-1].Day,
			TotalDays: snapshots[len(snapshots)-1].Day - snapshots[0].Day,
			Tracer:    tracerID,
		}
	}
	for i, s := range snapshots {
		a.Snapshots[i] = toArchiveSnapshot(s)
	}
	return a
}

// ToSnapshots converts the archive back into the Snapshot vector Player
// consumes.
func (a Archive) ToSnapshots() []Snapshot {
	out := make([]Snapshot, len(a.Snapshots))
	for i, as := range a.Snapshots {
		out[i] = fromArchiveSnapshot(as)
	}
	return out
}

func toArchiveSnapshot(s Snapshot) ArchiveSnapshot {
	as := ArchiveSnapshot{
		Day:           s.Day,
		ParticleCount: s.ParticleCount,
		Stats: ArchiveStats{
			TotalReleased:    s.Stats.TotalReleased,
			TotalDecayed:     s.Stats.TotalDecayed,
			MaxConcentration: s.Stats.MaxConcentration,
			MaxDepthReached:  s.Stats.MaxDepthReached,
			ParticlesOnLand:  s.Stats.ParticlesOnLand,
			ActiveParticles:  s.Stats.ActiveParticles,
			SimulationDays:   s.Stats.SimulationDays,
		},
		Particles: make([]ArchiveParticle, len(s.Particles)),
	}
	for i, p := range s.Particles {
		hist := make([]ArchiveHistorySample, len(p.History))
		for j, h := range p.History {
			hist[j] = ArchiveHistorySample{Day: h.Day, X: h.X, Y: h.Y, Depth: h.Depth}
		}
		as.Particles[i] = ArchiveParticle{
			X: p.X, Y: p.Y, Depth: p.Depth,
			Concentration: p.Concentration, Mass: p.Mass, Age: p.Age,
			History: hist,
		}
	}
	return as
}

func fromArchiveSnapshot(as ArchiveSnapshot) Snapshot {
	s := Snapshot{
		Day:           as.Day,
		ParticleCount: as.ParticleCount,
		Stats: engine.Stats{
			TotalReleased:    as.Stats.TotalReleased,
			TotalDecayed:     as.Stats.TotalDecayed,
			MaxConcentration: as.Stats.MaxConcentration,
			MaxDepthReached:  as.Stats.MaxDepthReached,
			ParticlesOnLand:  as.Stats.ParticlesOnLand,
			ActiveParticles:  as.Stats.ActiveParticles,
			SimulationDays:   as.Stats.SimulationDays,
		},
		Particles: make([]ParticleRecord, len(as.Particles)),
	}
	for i, p := range as.Particles {
		hist := make([]engine.HistorySample, len(p.History))
		for j, h := range p.History {
			hist[j] = engine.HistorySample{Day: h.Day, X: h.X, Y: h.Y, Depth: h.Depth}
		}
		s.Particles[i] = ParticleRecord{
			X: p.X, Y: p.Y, Depth: p.Depth,
			Concentration: p.Concentration, Mass: p.Mass, Age: p.Age,
			History: hist,
		}
	}
	return s
}

// Save encodes the archive as the TOML key-value document of spec.md §6.
func Save(w io.Writer, a Archive) error {
	if err := toml.NewEncoder(w).Encode(a); err != nil {
		return fmt.Errorf("%w: encoding snapshot archive: %v", xerrors.FormatError, err)
	}
	return nil
}

// Load decodes a snapshot archive previously written by Save.
func Load(r io.Reader) (Archive, error) {
	var a Archive
	if _, err := toml.NewDecoder(r).Decode(&a); err != nil {
		return Archive{}, fmt.Errorf("%w: decoding snapshot archive: %v", xerrors.FormatError, err)
	}
	return a, nil
}
