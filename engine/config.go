package engine

// KzProfile gives the depth-dependent vertical eddy diffusivity used by
// §4.5.4. Bands are checked top-down; the last entry should cover the
// remaining deep ocean.
type KzProfile struct {
	// MixedLayerKz applies below depth 0 and above MixedLayerDepthM
	// (default 50 m).
	MixedLayerKz     float64
	MixedLayerDepthM float64

	// UpperOceanKz applies between MixedLayerDepthM and UpperOceanDepthM
	// (default 200 m).
	UpperOceanKz     float64
	UpperOceanDepthM float64

	// DeepOceanKz applies below UpperOceanDepthM.
	DeepOceanKz float64
}

// DefaultKzProfile is spec.md §4.5.4's default piecewise profile.
var DefaultKzProfile = KzProfile{
	MixedLayerKz: 1e-2, MixedLayerDepthM: 50,
	UpperOceanKz: 1e-4, UpperOceanDepthM: 200,
	DeepOceanKz: 5e-5,
}

// At returns the vertical eddy diffusivity, m²/s, for a depth in metres.
func (p KzProfile) At(depthM float64) float64 {
	switch {
	case depthM < p.MixedLayerDepthM:
		return p.MixedLayerKz
	case depthM < p.UpperOceanDepthM:
		return p.UpperOceanKz
	default:
		return p.DeepOceanKz
	}
}

// RK4Config holds the adaptive sub-stepping policy of spec.md §4.5.2.
type RK4Config struct {
	Enabled          bool
	TimeStepSafety   float64
	MinStep          float64
	MaxStep          float64
	Adaptive         bool
}

// DefaultRK4Config matches the source's recommended defaults: a safety
// factor of 0.5 day·(m/s) and a step window of [0.01, 1] day.
var DefaultRK4Config = RK4Config{
	TimeStepSafety: 0.5,
	MinStep:        0.01,
	MaxStep:        1.0,
	Adaptive:       true,
}

// LandConfig governs the land-reflection rule of spec.md §4.5.5.
type LandConfig struct {
	Enabled         bool
	MaxSearchRadius int
}

// Config is the closed EngineConfig record of spec.md §9's "Dynamic map of
// configuration options" Design Note: every recognized option from the
// §4.5 table is an explicit field, so an unrecognized option is a Go
// compile error rather than a silently-ignored map key.
type Config struct {
	// ReferenceLon, ReferenceLat is the local-plane origin (lon0, lat0)
	// of spec.md's Glossary entry, also the default release-site center.
	ReferenceLon, ReferenceLat float64

	// PoolSize is the fixed number of particle slots the engine
	// allocates up front.
	PoolSize int

	DiffusivityScale float64
	SimulationSpeed  float64

	VerticalMixing   bool
	EkmanPumping     float64 // m/s, default 5e-6
	ConvectiveMixing float64 // m/s, default 2e-6

	RK4 RK4Config

	Land LandConfig

	KzProfile KzProfile

	// MassThresholdFraction is the fraction of a particle's initial mass
	// below which it is deactivated (spec.md §3: "active ⇒ mass >
	// threshold (1e-3·initial)"). Zero selects the default 1e-3.
	MassThresholdFraction float64

	// RandSeed seeds the engine's deterministic random source. Zero
	// selects a time-derived seed.
	RandSeed uint64
}

const (
	// DefaultEkmanPumping is spec.md §4.5's default, m/s.
	DefaultEkmanPumping = 5e-6
	// DefaultConvectiveMixing is spec.md §4.5's default, m/s.
	DefaultConvectiveMixing = 2e-6
	// DefaultMassThresholdFraction is spec.md §3's deactivation floor.
	DefaultMassThresholdFraction = 1e-3
	// KUPS converts (m/s)*day to km, spec.md §4.5.2: 1 m/s * 1 day =
	// 86400 m/day = 86.4 km/day.
	KUPS = 86.4
)

// withDefaults returns a copy of cfg with zero-valued optional fields
// filled in from the spec's defaults.
func (cfg Config) withDefaults() Config {
	if cfg.EkmanPumping == 0 {
		cfg.EkmanPumping = DefaultEkmanPumping
	}
	if cfg.ConvectiveMixing == 0 {
		cfg.ConvectiveMixing = DefaultConvectiveMixing
	}
	if cfg.MassThresholdFraction == 0 {
		cfg.MassThresholdFraction = DefaultMassThresholdFraction
	}
	if cfg.KzProfile == (KzProfile{}) {
		cfg.KzProfile = DefaultKzProfile
	}
	if cfg.DiffusivityScale == 0 {
		cfg.DiffusivityScale = 1
	}
	if cfg.RK4.MinStep == 0 && cfg.RK4.MaxStep == 0 {
		cfg.RK4.MinStep, cfg.RK4.MaxStep = DefaultRK4Config.MinStep, DefaultRK4Config.MaxStep
	}
	if cfg.RK4.TimeStepSafety == 0 {
		cfg.RK4.TimeStepSafety = DefaultRK4Config.TimeStepSafety
	}
	if cfg.Land.MaxSearchRadius == 0 {
		cfg.Land.MaxSearchRadius = 10
	}
	return cfg
}
