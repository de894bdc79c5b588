package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/cuemby/tracker-deployer/pkg/envconfig"
	"github.com/cuemby/tracker-deployer/pkg/envstate"
	"github.com/cuemby/tracker-deployer/pkg/health"
	"github.com/cuemby/tracker-deployer/pkg/progress"
)

// Run drives Released (or Running, idempotently) to Running: start
// the remote container stack, poll its health endpoints, and record
// the service URLs clients will use.
func (h *Handlers) Run(ctx context.Context, name string, reporter progress.Reporter) error {
	reporter = reporterOrSilent(reporter)
	logger := opLogger(name, "run")

	return h.Store.WithLock(name, h.LockTimeout, func() error {
		recPtr, err := h.Store.Load(name)
		if err != nil {
			return err
		}
		rec := *recPtr
		if err := envstate.CheckPrecondition(rec.State, envstate.PhaseRunning); err != nil {
			return err
		}
		logger.Info().Str("instance_ip", rec.State.InstanceIP).Msg("starting tracker stack")

		rec = rec.Touch(rec.State.EnterRunning(), nowFunc())
		if err := h.Store.Save(rec); err != nil {
			return err
		}

		p := progress.Start(reporter, name, 1, 1, "run")

		p.SubStep("driver-start containers", h.RemoteDir)
		if _, err := h.Orchestrator.Up(ctx, rec.BuildDir, rec.State.InstanceIP, rec.State.SSH.Username, rec.State.SSH.PrivateKeyPath, rec.State.SSH.Port); err != nil {
			p.Failed(err)
			logger.Error().Err(err).Msg("orchestrator up failed")
			return fail(h.Store, rec, envstate.PhaseRunning, err)
		}

		if err := checkCancelled(ctx); err != nil {
			p.Failed(err)
			return fail(h.Store, rec, envstate.PhaseRunning, err)
		}

		if rec.Config.Tracker.HealthCheckAPI != nil {
			p.SubStep("poll health endpoint", rec.Config.Tracker.HealthCheckAPI.BindAddress)
			url := fmt.Sprintf("http://%s%s", rec.State.InstanceIP, portSuffix(rec.Config.Tracker.HealthCheckAPI.BindAddress))
			probe := asProbe(health.NewHTTPChecker(url))
			if err := h.Retry.Run(ctx, "health-check", probe); err != nil {
				p.Failed(err)
				return fail(h.Store, rec, envstate.PhaseRunning, err)
			}
		}

		urls := serviceURLs(rec.Config, rec.State.InstanceIP)
		rec = rec.Touch(rec.State.Running(urls), nowFunc())
		if err := h.Store.Save(rec); err != nil {
			p.Failed(err)
			return err
		}

		logger.Info().Strs("service_urls", urls).Msg("tracker stack running")
		p.Completed()
		return nil
	})
}

// serviceURLs derives the client-facing addresses from the tracker's
// bind addresses and the instance's public IP.
func serviceURLs(cfg *envconfig.EnvironmentConfig, ip string) []string {
	var urls []string
	for _, addr := range cfg.Tracker.UDPTrackers {
		urls = append(urls, fmt.Sprintf("udp://%s%s/announce", ip, portSuffix(addr)))
	}
	for _, addr := range cfg.Tracker.HTTPTrackers {
		urls = append(urls, fmt.Sprintf("http://%s%s/announce", ip, portSuffix(addr)))
	}
	return urls
}

// portSuffix extracts ":<port>" from a "host:port" bind address.
func portSuffix(bindAddress string) string {
	idx := strings.LastIndex(bindAddress, ":")
	if idx < 0 {
		return ""
	}
	return bindAddress[idx:]
}
