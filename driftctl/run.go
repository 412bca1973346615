package driftctl

import (
	"context"
	"fmt"
)

// RunHeadless builds the engine from cfg and advances it in StepDays
// increments for DurationDays simulation days, logging aggregate
// statistics at the end.
func RunHeadless(ctx context.Context, cfg *Cfg) error {
	log := newLog("driftctl.run")

	mgr, err := buildManager(cfg)
	if err != nil {
		return err
	}
	cf, err := buildCurrentField(ctx, cfg, newLog("currentfield"))
	if err != nil {
		return err
	}
	df, err := buildDiffusivityField(ctx, cfg, newLog("diffusivityfield"))
	if err != nil {
		return err
	}
	eng := buildEngine(cfg, mgr, cf, df)

	step := cfg.GetFloat64("StepDays")
	if step <= 0 {
		step = 1
	}
	duration := cfg.GetFloat64("DurationDays")

	for day := 0.0; day < duration; day += step {
		select {
		case <-ctx.Done():
			return fmt.Errorf("driftctl: run cancelled: %w", ctx.Err())
		default:
		}
		eng.Advance(ctx, step)
	}

	stats := eng.Stats()
	log.WithFields(map[string]interface{}{
		"simulation_days":   stats.SimulationDays,
		"total_released":    stats.TotalReleased,
		"total_decayed":     stats.TotalDecayed,
		"active_particles":  stats.ActiveParticles,
		"particles_on_land": stats.ParticlesOnLand,
		"max_concentration": stats.MaxConcentration,
		"max_depth_reached": stats.MaxDepthReached,
	}).Info("run complete")
	return nil
}
