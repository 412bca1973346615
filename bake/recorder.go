package bake

import (
	"context"
	"fmt"
	"math"

	"github.com/oceantracer/driftmap/engine"
	"github.com/oceantracer/driftmap/internal/xerrors"
)

// StepDays is the fixed sub-step size a headless bake always uses,
// spec.md §4.6: "fixed sub-step size h = 0.1 days".
const StepDays = 0.1

const dayEpsilon = 1e-6

// Config controls one Bake run.
type Config struct {
	DurationDays float64

	// SnapshotFrequency captures a snapshot every this many days, in
	// addition to the mandatory day-0 snapshot. <= 0 disables periodic
	// snapshots (only day 0 is captured).
	SnapshotFrequency float64

	// AutoSaveEvery, when > 0 together with AutoSave, invokes AutoSave
	// with the snapshot list accumulated so far every this many days
	// (spec.md §4.6's "optional auto-save checkpoint every 30 days").
	AutoSaveEvery float64
	AutoSave      func(snapshots []Snapshot) error
}

// Bake runs eng headless at the fixed StepDays sub-step for
// cfg.DurationDays*10 steps, capturing snapshots at day 0 and every
// cfg.SnapshotFrequency boundary. It starts the engine if it is Idle.
// On cancellation or a failing AutoSave callback, it returns
// xerrors.BakeAborted wrapped around the cause together with every
// snapshot captured before the abort, which remains a valid, exportable
// partial result (spec.md §5's cancellation policy).
func Bake(ctx context.Context, eng *engine.Engine, cfg Config) ([]Snapshot, error) {
	if eng.State() == engine.Idle {
		eng.Start()
	}

	snapshots := []Snapshot{captureSnapshot(eng.SimDay(), eng)}

	nextSnapshotDay := cfg.SnapshotFrequency
	nextAutoSaveDay := cfg.AutoSaveEvery

	steps := int(math.Round(cfg.DurationDays * 10))
	for step := 0; step < steps; step++ {
		select {
		case <-ctx.Done():
			return snapshots, fmt.Errorf("%w: %v", xerrors.BakeAborted, ctx.Err())
		default:
		}

		eng.Advance(ctx, StepDays)
		day := eng.SimDay()

		if cfg.SnapshotFrequency > 0 && day+dayEpsilon >= nextSnapshotDay {
			snapshots = append(snapshots, captureSnapshot(day, eng))
			nextSnapshotDay += cfg.SnapshotFrequency
		}

		if cfg.AutoSaveEvery > 0 && cfg.AutoSave != nil && day+dayEpsilon >= nextAutoSaveDay {
			if err := cfg.AutoSave(snapshots); err != nil {
				return snapshots, fmt.Errorf("%w: auto-save failed: %v", xerrors.BakeAborted, err)
			}
			nextAutoSaveDay += cfg.AutoSaveEvery
		}
	}

	return snapshots, nil
}
