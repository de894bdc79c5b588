package handler

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cuemby/tracker-deployer/pkg/deployerr"
	"github.com/cuemby/tracker-deployer/pkg/driver"
	"github.com/cuemby/tracker-deployer/pkg/envconfig"
	"github.com/cuemby/tracker-deployer/pkg/envstate"
	"github.com/cuemby/tracker-deployer/pkg/log"
	"github.com/cuemby/tracker-deployer/pkg/progress"
	"github.com/cuemby/tracker-deployer/pkg/retry"
	"github.com/cuemby/tracker-deployer/pkg/store"
)

// Handlers wires the command workflows to their collaborators: a
// record store, the three external tool drivers, and the retry policy
// used by every readiness-polling step.
type Handlers struct {
	Store        *store.Store
	Provisioner  driver.Provisioner
	Configurator driver.Configurator
	Orchestrator driver.Orchestrator
	Transporter  driver.Transporter

	BuildRoot    string
	RemoteDir    string
	LockTimeout  time.Duration
	Retry        retry.Policy
}

// New builds a Handlers with the given store and drivers, applying
// the package's defaults for everything else.
func New(s *store.Store, p driver.Provisioner, c driver.Configurator, o driver.Orchestrator, t driver.Transporter, buildRoot string) *Handlers {
	return &Handlers{
		Store:        s,
		Provisioner:  p,
		Configurator: c,
		Orchestrator: o,
		Transporter:  t,
		BuildRoot:    buildRoot,
		RemoteDir:    "/opt/tracker-deployer",
		LockTimeout:  store.DefaultLockTimeout,
		Retry:        retry.Default,
	}
}

func (h *Handlers) buildDir(name string) string {
	return filepath.Join(h.BuildRoot, name)
}

// nowFunc is a seam so tests can control timestamps; handlers never
// call time.Now() directly.
var nowFunc = time.Now

// reporterOrSilent lets every handler accept a nil reporter without
// a nil check at every call site.
func reporterOrSilent(r progress.Reporter) progress.Reporter {
	if r == nil {
		return progress.Silent{}
	}
	return r
}

// opLogger builds the per-invocation child logger. Every log line a
// handler emits carries the environment, the handler name, and a
// fresh run_id so overlapping invocations across environments stay
// attributable.
func opLogger(environment, handlerName string) zerolog.Logger {
	return log.WithHandler(environment, handlerName).With().
		Str("run_id", uuid.NewString()).
		Logger()
}

// checkCancelled maps a cancelled context to the taxonomy's Cancelled
// error. Handlers call it between workflow steps; an in-flight
// subprocess is allowed to finish before cancellation is observed.
func checkCancelled(ctx context.Context) error {
	if ctx.Err() != nil {
		return deployerr.Cancelled()
	}
	return nil
}

// driverEnv assembles the environment variables the provisioner needs
// to authenticate against the configured cloud provider. Credentials
// are exposed only at this last moment, right before the subprocess
// call.
func driverEnv(cfg *envconfig.EnvironmentConfig) map[string]string {
	env := map[string]string{}
	if cfg.Provider.Kind == envconfig.ProviderHetzner && cfg.Provider.Hetzner != nil && cfg.Provider.Hetzner.APIToken != nil {
		env["HCLOUD_TOKEN"] = cfg.Provider.Hetzner.APIToken.ExposeString()
	}
	return env
}

// fail persists a Failed record carrying the intermediate phase that
// was being driven toward (target) and the mapped error, and always
// returns the original error so callers can propagate it unchanged.
func fail(s *store.Store, rec store.Record, target envstate.Phase, cause error) error {
	next := rec.State.Failed(target, cause.Error())
	rec = rec.Touch(next, nowFunc())
	_ = s.Save(rec) // best-effort: a failed Save here must not mask cause
	return cause
}
