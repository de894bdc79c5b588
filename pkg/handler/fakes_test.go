package handler

import (
	"context"
	"errors"

	"github.com/cuemby/tracker-deployer/pkg/driver"
)

type fakeProvisioner struct {
	provisionErr error
	destroyErr   error
	instanceIP   string
	provisions   int
	destroys     int
}

func (f *fakeProvisioner) Provision(ctx context.Context, workDir string, env map[string]string) (driver.ProvisionResult, error) {
	f.provisions++
	if f.provisionErr != nil {
		return driver.ProvisionResult{}, f.provisionErr
	}
	return driver.ProvisionResult{InstanceIP: f.instanceIP}, nil
}

func (f *fakeProvisioner) Destroy(ctx context.Context, workDir string, env map[string]string) error {
	f.destroys++
	return f.destroyErr
}

type fakeConfigurator struct {
	err error
}

func (f *fakeConfigurator) Configure(ctx context.Context, workDir, targetIP, sshUser, sshKeyPath string, sshPort int) error {
	return f.err
}

type fakeOrchestrator struct {
	pullErr error
	upErr   error
	downErr error
}

func (f *fakeOrchestrator) Pull(ctx context.Context, workDir, targetIP, sshUser, sshKeyPath string, sshPort int) error {
	return f.pullErr
}

func (f *fakeOrchestrator) Up(ctx context.Context, workDir, targetIP, sshUser, sshKeyPath string, sshPort int) (driver.RunResult, error) {
	if f.upErr != nil {
		return driver.RunResult{}, f.upErr
	}
	return driver.RunResult{}, nil
}

func (f *fakeOrchestrator) Down(ctx context.Context, workDir, targetIP, sshUser, sshKeyPath string, sshPort int) error {
	return f.downErr
}

type fakeTransporter struct {
	err error
}

func (f *fakeTransporter) Transfer(ctx context.Context, localDir, targetIP, sshUser, sshKeyPath, remoteDir string, sshPort int) error {
	return f.err
}

var errBoom = errors.New("boom")
