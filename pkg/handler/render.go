package handler

import (
	"github.com/cuemby/tracker-deployer/pkg/envconfig"
	"github.com/cuemby/tracker-deployer/pkg/render"
)

// Render is the out-of-band call to the artifact renderer with a
// caller-supplied config, instance IP, and output directory. It does
// not touch the store or require a precondition.
func (h *Handlers) Render(cfg *envconfig.EnvironmentConfig, instanceIP, outputDir string, overwrite bool) error {
	return render.Render(cfg, instanceIP, render.Options{OutputDir: outputDir, Overwrite: overwrite})
}
