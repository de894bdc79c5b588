package handler

import (
	"context"

	"github.com/cuemby/tracker-deployer/pkg/envstate"
	"github.com/cuemby/tracker-deployer/pkg/progress"
	"github.com/cuemby/tracker-deployer/pkg/render"
)

// Configure drives Provisioned to Configured: render with the frozen
// instance IP, then run the configurator to install the container
// runtime, open the firewall, and prepare directories.
func (h *Handlers) Configure(ctx context.Context, name string, reporter progress.Reporter) error {
	reporter = reporterOrSilent(reporter)
	logger := opLogger(name, "configure")

	return h.Store.WithLock(name, h.LockTimeout, func() error {
		recPtr, err := h.Store.Load(name)
		if err != nil {
			return err
		}
		rec := *recPtr
		if err := envstate.CheckPrecondition(rec.State, envstate.PhaseConfiguring); err != nil {
			return err
		}
		logger.Info().Str("instance_ip", rec.State.InstanceIP).Msg("configuring instance")

		rec = rec.Touch(rec.State.EnterConfiguring(), nowFunc())
		if err := h.Store.Save(rec); err != nil {
			return err
		}

		p := progress.Start(reporter, name, 1, 1, "configure")

		p.SubStep("render", "ansible/")
		if err := render.Render(rec.Config, rec.State.InstanceIP, render.Options{OutputDir: rec.BuildDir, Overwrite: true}); err != nil {
			p.Failed(err)
			return fail(h.Store, rec, envstate.PhaseConfiguring, err)
		}

		if err := checkCancelled(ctx); err != nil {
			p.Failed(err)
			return fail(h.Store, rec, envstate.PhaseConfiguring, err)
		}

		p.SubStep("driver-configure", rec.BuildDir+"/ansible")
		if err := h.Configurator.Configure(ctx, rec.BuildDir+"/ansible", rec.State.InstanceIP, rec.State.SSH.Username, rec.State.SSH.PrivateKeyPath, rec.State.SSH.Port); err != nil {
			p.Failed(err)
			logger.Error().Err(err).Msg("configurator failed")
			return fail(h.Store, rec, envstate.PhaseConfiguring, err)
		}

		rec = rec.Touch(rec.State.Configured(), nowFunc())
		if err := h.Store.Save(rec); err != nil {
			p.Failed(err)
			return err
		}

		logger.Info().Msg("instance configured")
		p.Completed()
		return nil
	})
}
