package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/cuemby/tracker-deployer/pkg/deployerr"
)

// Policy is the bounded-retry shape shared by every readiness-polling
// loop: SSH reachability, cloud-init completion, and health-check
// probes all use the same initial/cap/deadline triple: initial 1s,
// cap 10s, and a 5-minute default deadline.
type Policy struct {
	Initial time.Duration
	Cap     time.Duration
	Timeout time.Duration
}

// Default is the policy every handler falls back to when it doesn't
// need a tighter or looser deadline for its own polling step.
var Default = Policy{
	Initial: time.Second,
	Cap:     10 * time.Second,
	Timeout: 5 * time.Minute,
}

// Probe is a single readiness check: it returns nil once the awaited
// condition holds, and a non-nil error (any error) to request another
// attempt.
type Probe func(ctx context.Context) error

// Run retries probe under an exponential backoff until it succeeds,
// the policy's deadline expires, or ctx is cancelled. A deadline
// expiry is reported as deployerr.Timeout(phase, elapsed); ctx
// cancellation is reported as deployerr.Cancelled().
func (p Policy) Run(ctx context.Context, phase string, probe Probe) error {
	if p.Initial <= 0 {
		p = Default
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Initial
	b.MaxInterval = p.Cap
	b.MaxElapsedTime = p.Timeout
	b.Multiplier = 2

	start := nowFunc()
	bctx := backoff.WithContext(b, ctx)

	op := func() error {
		return probe(ctx)
	}

	if err := backoff.Retry(op, bctx); err != nil {
		if ctx.Err() != nil {
			return deployerr.Cancelled()
		}
		return deployerr.Timeout(phase, nowFunc().Sub(start))
	}
	return nil
}

// nowFunc is a seam for tests that want to assert elapsed-time
// reporting without sleeping through the real deadline.
var nowFunc = time.Now
