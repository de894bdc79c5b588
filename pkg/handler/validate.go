package handler

import (
	"os"

	"github.com/cuemby/tracker-deployer/pkg/envconfig"
	"github.com/cuemby/tracker-deployer/pkg/render"
)

// Validate parses and cross-field-checks a config document without
// persisting anything. When dryRunRender is set, it additionally
// confirms the config renders cleanly by rendering into a scratch
// directory that is removed before returning.
func (h *Handlers) Validate(configDoc []byte, dryRunRender bool) (*envconfig.EnvironmentConfig, error) {
	cfg, err := envconfig.ParseBytes(configDoc)
	if err != nil {
		return nil, err
	}
	if !dryRunRender {
		return cfg, nil
	}

	scratch, err := os.MkdirTemp("", "tracker-deployer-validate-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	if err := render.Render(cfg, "0.0.0.0", render.Options{OutputDir: scratch}); err != nil {
		return nil, err
	}
	return cfg, nil
}
