package driver

import "context"

// ProvisionResult is what the Provisioner driver hands back after it
// has created the VM: the instance's reachable IPv4 address.
type ProvisionResult struct {
	InstanceIP string
}

// Provisioner creates the VM described by an opentofu/tofu directory
// and reports its address. It must be idempotent on re-invocation
// against an already-provisioned directory.
type Provisioner interface {
	Provision(ctx context.Context, workDir string, env map[string]string) (ProvisionResult, error)
	Destroy(ctx context.Context, workDir string, env map[string]string) error
}

// Configurator runs the ansible inventory/playbooks in workDir against
// the target instance. Re-running against an already-configured host
// is idempotent.
type Configurator interface {
	Configure(ctx context.Context, workDir, targetIP, sshUser, sshKeyPath string, sshPort int) error
}

// RunResult carries the service URLs the orchestrator exposes once
// containers are up.
type RunResult struct {
	ServiceURLs []string
}

// Orchestrator starts, stops, and queries the remote container stack
// defined by the docker-compose artifacts in workDir, over SSH.
type Orchestrator interface {
	Pull(ctx context.Context, workDir, targetIP, sshUser, sshKeyPath string, sshPort int) error
	Up(ctx context.Context, workDir, targetIP, sshUser, sshKeyPath string, sshPort int) (RunResult, error)
	Down(ctx context.Context, workDir, targetIP, sshUser, sshKeyPath string, sshPort int) error
}

// Transporter copies the rendered artifact tree to the target
// instance, the "transfer compose + service configs" step of release.
type Transporter interface {
	Transfer(ctx context.Context, localDir, targetIP, sshUser, sshKeyPath, remoteDir string, sshPort int) error
}
