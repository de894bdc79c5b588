package handler

import (
	"errors"
	"os"

	"github.com/cuemby/tracker-deployer/pkg/deployerr"
	"github.com/cuemby/tracker-deployer/pkg/envstate"
	"github.com/cuemby/tracker-deployer/pkg/progress"
)

// Purge removes an environment's record, data_dir, and build_dir.
// Legal against a Destroyed record or an absent one with stray
// directories left over; repeating it once nothing remains succeeds
// as a no-op.
func (h *Handlers) Purge(name string, reporter progress.Reporter) error {
	reporter = reporterOrSilent(reporter)

	return h.Store.WithLock(name, h.LockTimeout, func() error {
		p := progress.Start(reporter, name, 1, 1, "purge")

		rec, err := h.Store.Load(name)
		switch {
		case err == nil:
			if rec.State.Phase != envstate.PhaseDestroyed {
				wrapped := deployerr.InvalidState(string(envstate.PhaseDestroyed), rec.State.String())
				p.Failed(wrapped)
				return wrapped
			}
		case isNotFound(err):
			// absent record with possibly-stray directories: legal.
		default:
			p.Failed(err)
			return err
		}

		dataDir := h.Store.EnvDir(name)
		buildDir := h.buildDir(name)

		p.SubStep("remove data_dir", dataDir)
		if err := os.RemoveAll(dataDir); err != nil {
			wrapped := deployerr.Io(dataDir, err)
			p.Failed(wrapped)
			return wrapped
		}

		p.SubStep("remove build_dir", buildDir)
		if err := os.RemoveAll(buildDir); err != nil {
			wrapped := deployerr.Io(buildDir, err)
			p.Failed(wrapped)
			return wrapped
		}

		p.Completed()
		return nil
	})
}

func isNotFound(err error) bool {
	var sysErr *deployerr.SystemError
	return errors.As(err, &sysErr) && sysErr.Kind == deployerr.KindNotFound
}
