package handler

import (
	"context"

	"github.com/cuemby/tracker-deployer/pkg/envstate"
	"github.com/cuemby/tracker-deployer/pkg/progress"
	"github.com/cuemby/tracker-deployer/pkg/render"
)

// Release drives Configured to Released: render, transfer the
// docker-compose and service artifacts to the instance, and pull the
// container images ahead of run.
func (h *Handlers) Release(ctx context.Context, name string, reporter progress.Reporter) error {
	reporter = reporterOrSilent(reporter)
	logger := opLogger(name, "release")

	return h.Store.WithLock(name, h.LockTimeout, func() error {
		recPtr, err := h.Store.Load(name)
		if err != nil {
			return err
		}
		rec := *recPtr
		if err := envstate.CheckPrecondition(rec.State, envstate.PhaseReleasing); err != nil {
			return err
		}
		logger.Info().Str("instance_ip", rec.State.InstanceIP).Msg("releasing artifacts")

		rec = rec.Touch(rec.State.EnterReleasing(), nowFunc())
		if err := h.Store.Save(rec); err != nil {
			return err
		}

		p := progress.Start(reporter, name, 1, 1, "release")

		p.SubStep("render", "docker-compose/, tracker/")
		if err := render.Render(rec.Config, rec.State.InstanceIP, render.Options{OutputDir: rec.BuildDir, Overwrite: true}); err != nil {
			p.Failed(err)
			return fail(h.Store, rec, envstate.PhaseReleasing, err)
		}

		if err := checkCancelled(ctx); err != nil {
			p.Failed(err)
			return fail(h.Store, rec, envstate.PhaseReleasing, err)
		}

		p.SubStep("transfer artifacts", h.RemoteDir)
		if err := h.Transporter.Transfer(ctx, rec.BuildDir, rec.State.InstanceIP, rec.State.SSH.Username, rec.State.SSH.PrivateKeyPath, h.RemoteDir, rec.State.SSH.Port); err != nil {
			p.Failed(err)
			logger.Error().Err(err).Msg("artifact transfer failed")
			return fail(h.Store, rec, envstate.PhaseReleasing, err)
		}

		if err := checkCancelled(ctx); err != nil {
			p.Failed(err)
			return fail(h.Store, rec, envstate.PhaseReleasing, err)
		}

		p.SubStep("pull container images", h.RemoteDir)
		if err := h.Orchestrator.Pull(ctx, rec.BuildDir, rec.State.InstanceIP, rec.State.SSH.Username, rec.State.SSH.PrivateKeyPath, rec.State.SSH.Port); err != nil {
			p.Failed(err)
			return fail(h.Store, rec, envstate.PhaseReleasing, err)
		}

		rec = rec.Touch(rec.State.Released(), nowFunc())
		if err := h.Store.Save(rec); err != nil {
			p.Failed(err)
			return err
		}

		logger.Info().Msg("artifacts released")
		p.Completed()
		return nil
	})
}
