package handler

import (
	"context"
	"fmt"

	"github.com/cuemby/tracker-deployer/pkg/deployerr"
	"github.com/cuemby/tracker-deployer/pkg/envstate"
	"github.com/cuemby/tracker-deployer/pkg/health"
	"github.com/cuemby/tracker-deployer/pkg/progress"
)

// Test runs read-only health probes against a Running environment. It
// never mutates state: a failed probe is reported through the
// progress stream, not persisted.
func (h *Handlers) Test(ctx context.Context, name string, reporter progress.Reporter) error {
	reporter = reporterOrSilent(reporter)

	rec, err := h.Store.Load(name)
	if err != nil {
		return err
	}
	if rec.State.Phase != envstate.PhaseRunning {
		return deployerr.InvalidState(string(envstate.PhaseRunning), rec.State.String())
	}

	p := progress.Start(reporter, name, 1, 1, "test")

	if rec.Config.Tracker.HealthCheckAPI != nil {
		url := fmt.Sprintf("http://%s%s", rec.State.InstanceIP, portSuffix(rec.Config.Tracker.HealthCheckAPI.BindAddress))
		p.SubStep("probe health endpoint", url)
		result := health.NewHTTPChecker(url).Check(ctx)
		if !result.Healthy {
			err := deployerr.Driver("health-check", "probe", 0, result.Message, nil)
			p.Failed(err)
			return err
		}
	}

	p.Completed()
	return nil
}
