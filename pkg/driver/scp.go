package driver

import (
	"context"
	"strconv"
)

// SCPTransporter copies localDir to remoteDir on the target instance
// via scp -r, creating remoteDir first over ssh if it doesn't exist.
type SCPTransporter struct{}

func NewSCPTransporter() *SCPTransporter { return &SCPTransporter{} }

func (t *SCPTransporter) Transfer(ctx context.Context, localDir, targetIP, sshUser, sshKeyPath, remoteDir string, sshPort int) error {
	target := sshUser + "@" + targetIP

	if _, err := runCommand(ctx, "ssh", "mkdir-remote", "", nil,
		"ssh", "-o", "StrictHostKeyChecking=no", "-p", strconv.Itoa(sshPort), "-i", sshKeyPath,
		target, "mkdir -p "+remoteDir,
	); err != nil {
		return err
	}

	_, err := runCommand(ctx, "scp", "transfer", "", nil,
		"scp", "-r", "-o", "StrictHostKeyChecking=no", "-P", strconv.Itoa(sshPort), "-i", sshKeyPath,
		localDir+"/.", target+":"+remoteDir+"/",
	)
	return err
}
