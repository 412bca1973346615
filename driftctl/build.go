package driftctl

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oceantracer/driftmap/currentfield"
	"github.com/oceantracer/driftmap/diffusivityfield"
	"github.com/oceantracer/driftmap/engine"
	"github.com/oceantracer/driftmap/internal/xerrors"
	"github.com/oceantracer/driftmap/release"
)

// phaseDoc is one entry of the "Phases" JSON-array configuration option.
type phaseDoc struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Total float64 `json:"total"`
	Unit  string  `json:"unit"`
}

// buildManager constructs a release.Manager from the Tracer.ID and
// Phases configuration options.
func buildManager(cfg *Cfg) (*release.Manager, error) {
	tracerID := cfg.GetString("Tracer.ID")

	var docs []phaseDoc
	if err := json.Unmarshal([]byte(cfg.GetString("Phases")), &docs); err != nil {
		return nil, fmt.Errorf("%w: parsing Phases: %v", xerrors.InvalidConfiguration, err)
	}
	phases := make([]release.Phase, len(docs))
	for i, d := range docs {
		unit, err := release.ParseUnit(d.Unit)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", xerrors.InvalidConfiguration, err)
		}
		phases[i] = release.Phase{Start: d.Start, End: d.End, Total: d.Total, Unit: unit}
	}

	mgr, err := release.NewManager(tracerID)
	if err != nil {
		return nil, err
	}
	if err := mgr.SetPhases(phases); err != nil {
		return nil, err
	}
	return mgr, nil
}

// buildCurrentField constructs and initializes a currentfield.Service
// from the CurrentField.* configuration options.
func buildCurrentField(ctx context.Context, cfg *Cfg, log *logrus.Entry) (*currentfield.Service, error) {
	base, err := parseBaseDate(cfg.GetString("CurrentField.BaseDate"))
	if err != nil {
		return nil, err
	}
	svc := currentfield.NewService(currentfield.Config{
		DataDir:         cfg.GetString("CurrentField.DataDir"),
		BaseDate:        base,
		MaxDaysInMemory: cfg.GetInt("CurrentField.MaxDaysInMemory"),
		Log:             log,
	})
	if err := svc.Init(ctx); err != nil {
		return nil, fmt.Errorf("driftctl: initializing current field: %w", err)
	}
	return svc, nil
}

// buildDiffusivityField constructs and initializes a
// diffusivityfield.Service from the DiffusivityField.* configuration
// options.
func buildDiffusivityField(ctx context.Context, cfg *Cfg, log *logrus.Entry) (*diffusivityfield.Service, error) {
	base, err := parseBaseDate(cfg.GetString("DiffusivityField.BaseDate"))
	if err != nil {
		return nil, err
	}
	svc := diffusivityfield.NewService(diffusivityfield.Config{
		DataDir:         cfg.GetString("DiffusivityField.DataDir"),
		BaseDate:        base,
		MaxDaysInMemory: cfg.GetInt("DiffusivityField.MaxDaysInMemory"),
		Log:             log,
	})
	if err := svc.Init(ctx); err != nil {
		return nil, fmt.Errorf("driftctl: initializing diffusivity field: %w", err)
	}
	return svc, nil
}

func parseBaseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parsing base date %q: %v", xerrors.InvalidConfiguration, s, err)
	}
	return t, nil
}

// buildEngine wires a release.Manager and the two field services into a
// ready-to-run engine.Engine, per the composition pattern of spec.md §9's
// capability-interface Design Note.
func buildEngine(cfg *Cfg, mgr *release.Manager, cf *currentfield.Service, df *diffusivityfield.Service) *engine.Engine {
	econf := engine.Config{
		ReferenceLon:     cfg.GetFloat64("Engine.ReferenceLon"),
		ReferenceLat:     cfg.GetFloat64("Engine.ReferenceLat"),
		PoolSize:         cfg.GetInt("Engine.PoolSize"),
		DiffusivityScale: cfg.GetFloat64("Engine.DiffusivityScale"),
		VerticalMixing:   cfg.GetBool("Engine.VerticalMixing"),
		RandSeed:         uint64(cfg.GetInt("Engine.RandSeed")),
	}
	econf.RK4 = engine.DefaultRK4Config
	econf.RK4.Enabled = cfg.GetBool("Engine.RK4Enabled")
	econf.Land = engine.LandConfig{
		Enabled:         cfg.GetBool("Land.Enabled"),
		MaxSearchRadius: cfg.GetInt("Land.MaxSearchRadius"),
	}

	eng := engine.New(econf, mgr, &engine.CurrentFieldAdapter{Service: cf}, &engine.DiffusivityFieldAdapter{Service: df})
	eng.Start()
	return eng
}

func newLog(component string) *logrus.Entry {
	return logrus.NewEntry(logrus.StandardLogger()).WithField("component", component)
}
