package envstate

import "github.com/cuemby/tracker-deployer/pkg/deployerr"

// preconditions maps each handler's target phase to the set of
// current phases from which it may legally be invoked: the phase the
// handler advances from, plus the handler's own achieved phase, since
// forward handlers are idempotent on their target state (a re-run
// re-renders and re-probes rather than failing).
var preconditions = map[Phase][]Phase{
	PhaseProvisioning: {PhaseCreated, PhaseProvisioned},
	PhaseConfiguring:  {PhaseProvisioned, PhaseConfigured},
	PhaseReleasing:    {PhaseConfigured, PhaseReleased},
	PhaseRunning:      {PhaseReleased, PhaseRunning},
	PhaseDestroying:   {}, // validated separately via HasInstance
}

// CheckPrecondition verifies that a handler driving towards target
// may run given the current state. Resuming a Failed record whose
// PriorState equals target is always legal, since that is the
// defined resume point.
func CheckPrecondition(current State, target Phase) error {
	if current.Phase == PhaseFailed {
		if current.PriorState == target {
			return nil
		}
		return deployerr.InvalidState(string(target), current.String())
	}

	allowed, ok := preconditions[target]
	if !ok {
		return deployerr.InvalidState(string(target), current.String())
	}
	for _, p := range allowed {
		if current.Phase == p {
			return nil
		}
	}
	return deployerr.InvalidState(string(target), current.String())
}

// CheckDestroyPrecondition implements destroy's wider precondition:
// any state with a provisioned instance, or a Failed whose prior
// state had one.
func CheckDestroyPrecondition(current State) error {
	if current.HasInstance() {
		return nil
	}
	return deployerr.InvalidState("provisioned instance", current.String())
}
