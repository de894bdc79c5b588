// Package envstate models the environment lifecycle as a closed,
// file-persistable tagged variant: Created, Provisioning, Provisioned,
// Configuring, Configured, Releasing, Released, Running, Destroying,
// Destroyed, and the terminal Failed. Each non-initial state carries
// the data frozen at the transition that produced it (instance IP and
// SSH connection data from Provisioned onward, service URLs from
// Running onward); later transitions read but never mutate it.
package envstate
