package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/cuemby/tracker-deployer/pkg/deployerr"
	"github.com/cuemby/tracker-deployer/pkg/progress"
)

// Reporter wraps another progress.Reporter and observes handler and
// step metrics from the event stream before forwarding each event
// unchanged. Wrapping the reporter keeps the handlers themselves free
// of any metrics dependency.
type Reporter struct {
	next progress.Reporter

	mu       sync.Mutex
	substeps map[string]substep // keyed by environment
}

type substep struct {
	handler string
	label   string
	started time.Time
}

// WrapReporter builds a Reporter forwarding to next.
func WrapReporter(next progress.Reporter) *Reporter {
	if next == nil {
		next = progress.Silent{}
	}
	return &Reporter{next: next, substeps: make(map[string]substep)}
}

func (r *Reporter) Report(e progress.Event) {
	switch e.Kind {
	case progress.EventSubStep:
		r.observePrevSubstep(e.Environment, nowFunc())
		r.mu.Lock()
		r.substeps[e.Environment] = substep{handler: e.PhaseLabel, label: e.SubStepLabel, started: nowFunc()}
		r.mu.Unlock()

	case progress.EventPhaseCompleted:
		r.observePrevSubstep(e.Environment, nowFunc())
		HandlerDuration.WithLabelValues(e.PhaseLabel).Observe(e.Duration.Seconds())

	case progress.EventPhaseFailed:
		r.observePrevSubstep(e.Environment, nowFunc())
		HandlerDuration.WithLabelValues(e.PhaseLabel).Observe(e.Duration.Seconds())
		HandlerFailuresTotal.WithLabelValues(e.PhaseLabel, errorKind(e.Err)).Inc()
	}

	r.next.Report(e)
}

// observePrevSubstep closes out the environment's in-flight substep,
// if any, attributing the elapsed time to StepDuration.
func (r *Reporter) observePrevSubstep(environment string, now time.Time) {
	r.mu.Lock()
	prev, ok := r.substeps[environment]
	if ok {
		delete(r.substeps, environment)
	}
	r.mu.Unlock()
	if ok {
		StepDuration.WithLabelValues(prev.handler, prev.label).Observe(now.Sub(prev.started).Seconds())
	}
}

func errorKind(err error) string {
	var sysErr *deployerr.SystemError
	if errors.As(err, &sysErr) {
		return string(sysErr.Kind)
	}
	return "unknown"
}

// ObserveLockWait feeds the store's lock-wait hook.
func ObserveLockWait(d time.Duration) {
	LockWaitDuration.Observe(d.Seconds())
}

// ObserveDriverInvocation feeds the driver's per-invocation hook.
func ObserveDriverInvocation(tool string, failed bool) {
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	DriverInvocationsTotal.WithLabelValues(tool, outcome).Inc()
}

// nowFunc is a test seam for substep timing.
var nowFunc = time.Now
