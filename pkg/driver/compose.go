package driver

import (
	"context"
	"fmt"
)

// ComposeOrchestrator drives docker compose on the target VM over
// SSH: it copies nothing itself (release's transfer step owns that)
// and only issues the up/down commands against the directory already
// present on the remote host.
type ComposeOrchestrator struct {
	// RemoteDir is the directory on the target VM holding the
	// transferred docker-compose artifacts.
	RemoteDir string
}

func NewComposeOrchestrator(remoteDir string) *ComposeOrchestrator {
	return &ComposeOrchestrator{RemoteDir: remoteDir}
}

func (o *ComposeOrchestrator) remoteDir() string {
	if o.RemoteDir != "" {
		return o.RemoteDir
	}
	return "/opt/tracker-deployer"
}

func (o *ComposeOrchestrator) Pull(ctx context.Context, workDir, targetIP, sshUser, sshKeyPath string, sshPort int) error {
	_, err := o.ssh(ctx, "pull", targetIP, sshUser, sshKeyPath, sshPort, "docker compose pull")
	return err
}

func (o *ComposeOrchestrator) Up(ctx context.Context, workDir, targetIP, sshUser, sshKeyPath string, sshPort int) (RunResult, error) {
	if _, err := o.ssh(ctx, "up", targetIP, sshUser, sshKeyPath, sshPort, "docker compose up -d"); err != nil {
		return RunResult{}, err
	}
	return RunResult{}, nil
}

func (o *ComposeOrchestrator) Down(ctx context.Context, workDir, targetIP, sshUser, sshKeyPath string, sshPort int) error {
	_, err := o.ssh(ctx, "down", targetIP, sshUser, sshKeyPath, sshPort, "docker compose down")
	return err
}

func (o *ComposeOrchestrator) ssh(ctx context.Context, step, targetIP, sshUser, sshKeyPath string, sshPort int, remoteCmd string) (string, error) {
	target := fmt.Sprintf("%s@%s", sshUser, targetIP)
	fullCmd := fmt.Sprintf("cd %s && %s", o.remoteDir(), remoteCmd)
	return runCommand(ctx, "ssh", step, "", nil,
		"ssh",
		"-o", "StrictHostKeyChecking=no",
		"-p", fmt.Sprintf("%d", sshPort),
		"-i", sshKeyPath,
		target,
		fullCmd,
	)
}
