/*
Package health implements the readiness probes used by the provision,
run and test handlers: HTTP checks against the tracker's
health-check API, TCP checks against the SSH port while waiting for an
instance to come up, and exec checks for local postcondition scripts.

All three share a Checker interface so callers can poll with a uniform
retry loop (see pkg/retry) regardless of probe kind:

	type Checker interface {
		Check(ctx context.Context) Result
		Type() CheckType
	}

Status applies simple hysteresis: a probe must fail Retries times in a
row before the target is considered unhealthy, and one success resets
the streak. The handlers do not use Status: their polling goes through
pkg/retry, which retries every failed probe until its deadline.
*/
package health
