package driftctl

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/oceantracer/driftmap/bake"
)

// RunPlay loads the snapshot archive at OutputFile and steps through it
// at Play.Speed simulation-days per wall-clock second, logging one line
// per frame.
func RunPlay(ctx context.Context, cfg *Cfg) error {
	log := newLog("driftctl.play")

	path := cfg.GetString("OutputFile")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("driftctl: opening archive file: %w", err)
	}
	defer f.Close()

	archive, err := bake.Load(f)
	if err != nil {
		return fmt.Errorf("driftctl: loading archive: %w", err)
	}
	pl := bake.NewPlayer(archive.ToSnapshots())

	speed := cfg.GetFloat64("Play.Speed")
	if speed <= 0 {
		speed = 1
	}

	bake.Play(ctx, pl, speed, 100*time.Millisecond, func(frame bake.Frame) {
		log.WithFields(map[string]interface{}{
			"day":       frame.Day,
			"particles": len(frame.Particles),
		}).Info("frame")
	})
	return nil
}
