package driftctl

import (
	"context"
	"fmt"
	"os"

	"github.com/oceantracer/driftmap/bake"
)

// RunBake builds the engine from cfg, runs bake.Bake for DurationDays,
// and writes the resulting snapshot archive to OutputFile. A
// Bake.AutoSaveEvery > 0 also writes a partial archive at that cadence,
// so a cancelled or crashed bake still leaves a usable archive on disk.
func RunBake(ctx context.Context, cfg *Cfg) error {
	log := newLog("driftctl.bake")

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

	outputFile := cfg.GetString("OutputFile")
	tracerID := cfg.GetString("Tracer.ID")

	bakeCfg := bake.Config{
		DurationDays:      cfg.GetFloat64("DurationDays"),
		SnapshotFrequency: cfg.GetFloat64("Bake.SnapshotFrequency"),
		AutoSaveEvery:     cfg.GetFloat64("Bake.AutoSaveEvery"),
	}
	if bakeCfg.AutoSaveEvery > 0 {
		bakeCfg.AutoSave = func(snapshots []bake.Snapshot) error {
			log.WithField("snapshots", len(snapshots)).Info("auto-save checkpoint")
			return writeArchive(outputFile, snapshots, tracerID)
		}
	}

	snapshots, bakeErr := bake.Bake(ctx, eng, bakeCfg)
	if err := writeArchive(outputFile, snapshots, tracerID); err != nil {
		return err
	}
	if bakeErr != nil {
		return fmt.Errorf("driftctl: bake ended early, partial archive written to %s: %w", outputFile, bakeErr)
	}
	log.WithFields(map[string]interface{}{
		"snapshots": len(snapshots),
		"output":    outputFile,
	}).Info("bake complete")
	return nil
}

func writeArchive(path string, snapshots []bake.Snapshot, tracerID string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("driftctl: creating archive file: %w", err)
	}
	defer f.Close()
	archive := bake.NewArchive(snapshots, tracerID)
	return bake.Save(f, archive)
}
