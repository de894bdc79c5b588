package handler

import (
	"os"

	"github.com/cuemby/tracker-deployer/pkg/deployerr"
	"github.com/cuemby/tracker-deployer/pkg/envconfig"
	"github.com/cuemby/tracker-deployer/pkg/envstate"
	"github.com/cuemby/tracker-deployer/pkg/progress"
	"github.com/cuemby/tracker-deployer/pkg/store"
)

// Create writes a new record in the Created state and provisions its
// data_dir/build_dir. Precondition: no record exists for cfg.Name.
func (h *Handlers) Create(cfg *envconfig.EnvironmentConfig, reporter progress.Reporter) (store.Record, error) {
	reporter = reporterOrSilent(reporter)
	name := cfg.Name.String()

	var result store.Record
	err := h.Store.WithLock(name, h.LockTimeout, func() error {
		if h.Store.Exists(name) {
			return deployerr.InvalidState("absent", "existing record")
		}

		p := progress.Start(reporter, name, 1, 1, "create")

		dataDir := h.Store.EnvDir(name)
		buildDir := h.buildDir(name)
		p.SubStep("prepare directories", dataDir+", "+buildDir)
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			wrapped := deployerr.Io(dataDir, err)
			p.Failed(wrapped)
			return wrapped
		}
		if err := os.MkdirAll(buildDir, 0o755); err != nil {
			wrapped := deployerr.Io(buildDir, err)
			p.Failed(wrapped)
			return wrapped
		}

		now := nowFunc()
		rec := store.Record{
			Config:    cfg,
			State:     envstate.Created(),
			CreatedAt: now,
			UpdatedAt: now,
			DataDir:   dataDir,
			BuildDir:  buildDir,
		}
		if err := h.Store.Save(rec); err != nil {
			p.Failed(err)
			return err
		}

		p.Completed()
		result = rec
		return nil
	})
	return result, err
}
