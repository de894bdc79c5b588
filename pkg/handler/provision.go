package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/cuemby/tracker-deployer/pkg/envstate"
	"github.com/cuemby/tracker-deployer/pkg/health"
	"github.com/cuemby/tracker-deployer/pkg/progress"
	"github.com/cuemby/tracker-deployer/pkg/render"
)

// Provision drives an environment from Created (or a Failed attempt
// at provisioning, or Provisioned idempotently) to Provisioned:
// render, invoke the provisioner, then poll SSH and cloud-init
// readiness before freezing the instance IP. On a re-run against an
// already-provisioned instance, the renderer and the readiness probes
// still execute, but the driver-mutating apply is skipped when a
// quick probe confirms the existing instance still answers.
func (h *Handlers) Provision(ctx context.Context, name string, reporter progress.Reporter) error {
	reporter = reporterOrSilent(reporter)
	logger := opLogger(name, "provision")

	return h.Store.WithLock(name, h.LockTimeout, func() error {
		recPtr, err := h.Store.Load(name)
		if err != nil {
			return err
		}
		rec := *recPtr
		if err := envstate.CheckPrecondition(rec.State, envstate.PhaseProvisioning); err != nil {
			return err
		}
		logger.Info().Str("from", string(rec.State.Phase)).Msg("provisioning environment")

		rec = rec.Touch(rec.State.EnterProvisioning(), nowFunc())
		if err := h.Store.Save(rec); err != nil {
			return err
		}

		p := progress.Start(reporter, name, 1, 1, "provision")

		p.SubStep("render", "opentofu/")
		if err := render.Render(rec.Config, rec.State.InstanceIP, render.Options{OutputDir: rec.BuildDir, Overwrite: true}); err != nil {
			p.Failed(err)
			return fail(h.Store, rec, envstate.PhaseProvisioning, err)
		}

		if err := checkCancelled(ctx); err != nil {
			p.Failed(err)
			return fail(h.Store, rec, envstate.PhaseProvisioning, err)
		}

		sshPort := 22
		sshUser := "torrust"
		var sshKeyPath string
		if rec.Config.SSH != nil {
			sshPort = rec.Config.SSH.Port
			sshUser = rec.Config.SSH.Username
			sshKeyPath = rec.Config.SSH.PrivateKeyPath
		}

		instanceIP := rec.State.InstanceIP
		if instanceIP != "" && h.instanceAnswers(ctx, instanceIP, sshPort) {
			p.SubStep("probe existing instance", instanceIP+" answers; skipping apply")
			logger.Info().Str("instance_ip", instanceIP).Msg("existing instance still reachable, skipping apply")
		} else {
			p.SubStep("driver-provision", rec.BuildDir+"/opentofu")
			result, err := h.Provisioner.Provision(ctx, rec.BuildDir+"/opentofu", driverEnv(rec.Config))
			if err != nil {
				p.Failed(err)
				logger.Error().Err(err).Msg("provisioner failed")
				return fail(h.Store, rec, envstate.PhaseProvisioning, err)
			}
			instanceIP = result.InstanceIP
		}

		if err := checkCancelled(ctx); err != nil {
			p.Failed(err)
			return fail(h.Store, rec, envstate.PhaseProvisioning, err)
		}

		p.SubStep("poll ssh reachability", instanceIP)
		sshProbe := asProbe(health.NewTCPChecker(fmt.Sprintf("%s:%d", instanceIP, sshPort)))
		if err := h.Retry.Run(ctx, "ssh-reachability", sshProbe); err != nil {
			p.Failed(err)
			return fail(h.Store, rec, envstate.PhaseProvisioning, err)
		}

		p.SubStep("poll cloud-init completion", instanceIP)
		cloudInitProbe := asProbe(health.NewExecChecker([]string{
			"ssh", "-o", "StrictHostKeyChecking=no", "-p", fmt.Sprintf("%d", sshPort),
			"-i", sshKeyPath, fmt.Sprintf("%s@%s", sshUser, instanceIP),
			"cloud-init status --wait",
		}))
		if err := h.Retry.Run(ctx, "cloud-init", cloudInitProbe); err != nil {
			p.Failed(err)
			return fail(h.Store, rec, envstate.PhaseProvisioning, err)
		}

		next := envstate.Provisioned(instanceIP, envstate.SSHConnection{
			Host:           instanceIP,
			Port:           sshPort,
			Username:       sshUser,
			PrivateKeyPath: sshKeyPath,
		})
		rec = rec.Touch(next, nowFunc())
		if err := h.Store.Save(rec); err != nil {
			p.Failed(err)
			return err
		}

		logger.Info().Str("instance_ip", instanceIP).Msg("environment provisioned")
		p.Completed()
		return nil
	})
}

// instanceAnswers is the cheap single-shot probe behind provision's
// skip-the-apply fast path on idempotent re-runs.
func (h *Handlers) instanceAnswers(ctx context.Context, ip string, sshPort int) bool {
	checker := health.NewTCPChecker(fmt.Sprintf("%s:%d", ip, sshPort)).WithTimeout(3 * time.Second)
	return checker.Check(ctx).Healthy
}
