/*
Package driver adapts the three external tools the deployer drives
(the infrastructure provisioner, the OS configurator, and the remote
container orchestrator) behind small interfaces with one shared
shape: a command is run with a working directory and environment
variables, and its exit code and stderr are mapped to a
deployerr.Driver error.

The default implementations shell out to opentofu/tofu,
ansible-playbook, and docker compose over SSH via os/exec, each
respecting a context deadline so a cancelled handler can abandon an
in-flight subprocess.
*/
package driver
