package driver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cuemby/tracker-deployer/pkg/deployerr"
)

// OpenTofuProvisioner shells out to the opentofu/tofu binary against a
// rendered opentofu/ directory.
type OpenTofuProvisioner struct {
	// Binary is the executable name, "tofu" by default.
	Binary string
}

func NewOpenTofuProvisioner() *OpenTofuProvisioner {
	return &OpenTofuProvisioner{Binary: "tofu"}
}

func (p *OpenTofuProvisioner) binary() string {
	if p.Binary != "" {
		return p.Binary
	}
	return "tofu"
}

func (p *OpenTofuProvisioner) Provision(ctx context.Context, workDir string, env map[string]string) (ProvisionResult, error) {
	if _, err := runCommand(ctx, p.binary(), "init", workDir, env, p.binary(), "init", "-input=false"); err != nil {
		return ProvisionResult{}, err
	}
	if _, err := runCommand(ctx, p.binary(), "apply", workDir, env, p.binary(), "apply", "-auto-approve", "-input=false"); err != nil {
		return ProvisionResult{}, err
	}

	out, err := runCommand(ctx, p.binary(), "output", workDir, env, p.binary(), "output", "-json", "instance_ip")
	if err != nil {
		return ProvisionResult{}, err
	}
	var ip string
	if err := json.Unmarshal([]byte(out), &ip); err != nil {
		return ProvisionResult{}, deployerr.Driver(p.binary(), "output", 0, fmt.Sprintf("unparseable instance_ip output: %v", err), err)
	}
	return ProvisionResult{InstanceIP: ip}, nil
}

func (p *OpenTofuProvisioner) Destroy(ctx context.Context, workDir string, env map[string]string) error {
	_, err := runCommand(ctx, p.binary(), "destroy", workDir, env, p.binary(), "destroy", "-auto-approve", "-input=false")
	return err
}
