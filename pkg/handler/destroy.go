package handler

import (
	"context"

	"github.com/cuemby/tracker-deployer/pkg/envstate"
	"github.com/cuemby/tracker-deployer/pkg/progress"
)

// Destroy drives any instance-bearing state (or a Failed attempt with
// one) to Destroyed. Repeating it on an already-Destroyed environment
// succeeds as a no-op.
func (h *Handlers) Destroy(ctx context.Context, name string, reporter progress.Reporter) error {
	reporter = reporterOrSilent(reporter)
	logger := opLogger(name, "destroy")

	return h.Store.WithLock(name, h.LockTimeout, func() error {
		recPtr, err := h.Store.Load(name)
		if err != nil {
			return err
		}
		rec := *recPtr

		p := progress.Start(reporter, name, 1, 1, "destroy")

		if rec.State.Phase == envstate.PhaseDestroyed {
			p.Completed()
			return nil
		}

		if err := envstate.CheckDestroyPrecondition(rec.State); err != nil {
			p.Failed(err)
			return err
		}

		rec = rec.Touch(rec.State.EnterDestroying(), nowFunc())
		if err := h.Store.Save(rec); err != nil {
			p.Failed(err)
			return err
		}

		if err := checkCancelled(ctx); err != nil {
			p.Failed(err)
			return fail(h.Store, rec, envstate.PhaseDestroying, err)
		}

		p.SubStep("driver-destroy", rec.BuildDir+"/opentofu")
		if err := h.Provisioner.Destroy(ctx, rec.BuildDir+"/opentofu", driverEnv(rec.Config)); err != nil {
			p.Failed(err)
			logger.Error().Err(err).Msg("destroy failed")
			return fail(h.Store, rec, envstate.PhaseDestroying, err)
		}

		rec = rec.Touch(envstate.Destroyed(), nowFunc())
		if err := h.Store.Save(rec); err != nil {
			p.Failed(err)
			return err
		}

		logger.Info().Msg("infrastructure destroyed")
		p.Completed()
		return nil
	})
}
