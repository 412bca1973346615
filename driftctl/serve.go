package driftctl

import (
	"context"
	"net/http"

	"github.com/oceantracer/driftmap/bake"
)

// RunServe builds the engine from cfg, advances it in StepDays
// increments, and broadcasts a live frame to every connected websocket
// client after each Advance, until DurationDays elapses or ctx is
// cancelled.
func RunServe(ctx context.Context, cfg *Cfg) error {
	log := newLog("driftctl.serve")

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

	hub := bake.NewHub(true)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)

	addr := cfg.GetString("Serve.Address")
	server := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()
	log.WithField("address", addr).Info("serving live frames over websocket at /ws")

	step := cfg.GetFloat64("StepDays")
	if step <= 0 {
		step = 1
	}
	duration := cfg.GetFloat64("DurationDays")

	for day := 0.0; day < duration; day += step {
		select {
		case <-ctx.Done():
			server.Close()
			return nil
		case err := <-errCh:
			return err
		default:
		}
		eng.Advance(ctx, step)
		hub.Broadcast(bake.FrameFromEngine(eng))
	}

	server.Close()
	log.Info("serve complete")
	return nil
}
