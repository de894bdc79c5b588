package envstate

import "fmt"

// Phase identifies one node of the lifecycle graph.
type Phase string

const (
	PhaseCreated      Phase = "created"
	PhaseProvisioning Phase = "provisioning"
	PhaseProvisioned  Phase = "provisioned"
	PhaseConfiguring  Phase = "configuring"
	PhaseConfigured   Phase = "configured"
	PhaseReleasing    Phase = "releasing"
	PhaseReleased     Phase = "released"
	PhaseRunning      Phase = "running"
	PhaseDestroying   Phase = "destroying"
	PhaseDestroyed    Phase = "destroyed"
	PhaseFailed       Phase = "failed"
)

// hasInstance is the set of phases for which an instance may exist
// and need to be torn down. Provisioning is included: an interrupted
// provision can leave a partially created VM behind, and destroy must
// be able to clean it up.
var hasInstance = map[Phase]bool{
	PhaseProvisioning: true,
	PhaseProvisioned:  true,
	PhaseConfiguring:  true,
	PhaseConfigured:   true,
	PhaseReleasing:    true,
	PhaseReleased:     true,
	PhaseRunning:      true,
	PhaseDestroying:   true,
}

// SSHConnection is the resolved connection data frozen at Provisioned.
type SSHConnection struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	PrivateKeyPath string `yaml:"private_key_path"`
}

// State is the lifecycle's tagged variant. Which optional fields are
// populated depends on Phase, and the groups accumulate: SSH/InstanceIP
// from Provisioned onward (and on a Provisioning re-run that carries
// them forward), ServiceURLs from Running onward, PriorState and Reason
// only when Phase is Failed, which also keeps the instance fields of
// the state it failed from.
type State struct {
	Phase Phase `yaml:"phase"`

	InstanceIP  string         `yaml:"instance_ip,omitempty"`
	SSH         *SSHConnection `yaml:"ssh,omitempty"`
	ServiceURLs []string       `yaml:"service_urls,omitempty"`

	// PriorState is the intermediate phase a handler was driving
	// towards when it failed (e.g. Provisioning). A retry of the
	// handler whose target phase matches PriorState resumes the
	// workflow from the start of that stage.
	PriorState Phase  `yaml:"prior_state,omitempty"`
	Reason     string `yaml:"reason,omitempty"`
}

// Created builds the initial state for a freshly created environment.
func Created() State {
	return State{Phase: PhaseCreated}
}

// HasInstance reports whether this state (or the state a Failed was
// driving towards) implies a provisioned VM might still exist.
func (s State) HasInstance() bool {
	if s.Phase == PhaseFailed {
		return hasInstance[s.PriorState]
	}
	return hasInstance[s.Phase]
}

// EnterProvisioning begins the provision handler's workflow. Instance
// data already frozen by an earlier successful provision is carried
// forward so an idempotent re-run can probe the existing instance.
func (s State) EnterProvisioning() State {
	return State{Phase: PhaseProvisioning, InstanceIP: s.InstanceIP, SSH: s.SSH}
}

// Provisioned freezes the instance IP and SSH connection data
// produced by a successful provision.
func Provisioned(ip string, ssh SSHConnection) State {
	return State{Phase: PhaseProvisioned, InstanceIP: ip, SSH: &ssh}
}

// EnterConfiguring begins the configure handler's workflow, carrying
// forward the IP and SSH data frozen at Provisioned.
func (s State) EnterConfiguring() State {
	return State{Phase: PhaseConfiguring, InstanceIP: s.InstanceIP, SSH: s.SSH}
}

// Configured marks configuration complete.
func (s State) Configured() State {
	return State{Phase: PhaseConfigured, InstanceIP: s.InstanceIP, SSH: s.SSH}
}

// EnterReleasing begins the release handler's workflow.
func (s State) EnterReleasing() State {
	return State{Phase: PhaseReleasing, InstanceIP: s.InstanceIP, SSH: s.SSH}
}

// Released marks artifact release complete.
func (s State) Released() State {
	return State{Phase: PhaseReleased, InstanceIP: s.InstanceIP, SSH: s.SSH}
}

// EnterRunning begins the run handler's workflow.
func (s State) EnterRunning() State {
	return State{Phase: PhaseRunning, InstanceIP: s.InstanceIP, SSH: s.SSH}
}

// Running freezes the service URLs produced by a successful run.
func (s State) Running(serviceURLs []string) State {
	return State{Phase: PhaseRunning, InstanceIP: s.InstanceIP, SSH: s.SSH, ServiceURLs: serviceURLs}
}

// EnterDestroying begins the destroy handler's workflow, preserved
// from whatever instance-bearing state it was invoked against.
func (s State) EnterDestroying() State {
	return State{Phase: PhaseDestroying, InstanceIP: s.InstanceIP, SSH: s.SSH}
}

// Destroyed retains only enough to support a later purge.
func Destroyed() State {
	return State{Phase: PhaseDestroyed}
}

// Failed transitions to the terminal-for-this-attempt state, freezing
// the phase the handler was driving towards and a human-readable
// cause. The instance-bearing fields already present are retained so
// that a subsequent destroy can still find the IP.
func (s State) Failed(target Phase, reason string) State {
	return State{
		Phase:       PhaseFailed,
		InstanceIP:  s.InstanceIP,
		SSH:         s.SSH,
		ServiceURLs: s.ServiceURLs,
		PriorState:  target,
		Reason:      reason,
	}
}

func (s State) String() string {
	if s.Phase == PhaseFailed {
		return fmt.Sprintf("failed(prior=%s, reason=%s)", s.PriorState, s.Reason)
	}
	return string(s.Phase)
}
