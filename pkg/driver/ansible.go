package driver

import (
	"context"
	"fmt"
)

// AnsibleConfigurator runs ansible-playbook against a rendered
// ansible/ directory (inventory.ini + playbook.yml).
type AnsibleConfigurator struct {
	// Binary is the executable name, "ansible-playbook" by default.
	Binary string
}

func NewAnsibleConfigurator() *AnsibleConfigurator {
	return &AnsibleConfigurator{Binary: "ansible-playbook"}
}

func (c *AnsibleConfigurator) binary() string {
	if c.Binary != "" {
		return c.Binary
	}
	return "ansible-playbook"
}

func (c *AnsibleConfigurator) Configure(ctx context.Context, workDir, targetIP, sshUser, sshKeyPath string, sshPort int) error {
	sshArgs := fmt.Sprintf("-o StrictHostKeyChecking=no -p %d", sshPort)
	_, err := runCommand(ctx, c.binary(), "configure", workDir, nil,
		c.binary(),
		"-i", "inventory.ini",
		"--private-key", sshKeyPath,
		"--user", sshUser,
		"--ssh-common-args", sshArgs,
		"playbook.yml",
	)
	return err
}
