package progress

import "time"

// EventKind discriminates the four event shapes a handler can emit.
type EventKind string

const (
	EventPhaseStarted   EventKind = "phase_started"
	EventSubStep        EventKind = "sub_step"
	EventPhaseCompleted EventKind = "phase_completed"
	EventPhaseFailed    EventKind = "phase_failed"
)

// Event is one entry in a handler's progress stream. Environment is
// attached unconditionally so a reporter shared across concurrently
// driven environments can always attribute an event correctly.
type Event struct {
	Kind        EventKind
	Environment string

	// Phase fields, set on PhaseStarted/PhaseCompleted/PhaseFailed.
	PhaseIndex int
	PhaseTotal int
	PhaseLabel string

	// SubStep fields, set on EventSubStep.
	SubStepLabel  string
	SubStepDetail string

	// PhaseCompleted field.
	Duration time.Duration

	// PhaseFailed field. Already redacted and safe to print/log.
	Err error
}

// Reporter is the injected port a handler reports progress through.
type Reporter interface {
	Report(Event)
}

// Phase is a convenience handle returned by Start, used to emit
// substeps and the terminal completed/failed event for one phase
// without the caller re-stating index/total/label every time.
type Phase struct {
	reporter    Reporter
	environment string
	index       int
	total       int
	label       string
	start       time.Time
}

// Start emits PhaseStarted and returns a handle for the rest of the
// phase's events.
func Start(r Reporter, environment string, index, total int, label string) *Phase {
	p := &Phase{reporter: r, environment: environment, index: index, total: total, label: label, start: time.Now()}
	r.Report(Event{
		Kind:        EventPhaseStarted,
		Environment: environment,
		PhaseIndex:  index,
		PhaseTotal:  total,
		PhaseLabel:  label,
	})
	return p
}

// SubStep emits a SubStep event under the current phase.
func (p *Phase) SubStep(label, detail string) {
	p.reporter.Report(Event{
		Kind:          EventSubStep,
		Environment:   p.environment,
		PhaseIndex:    p.index,
		PhaseTotal:    p.total,
		PhaseLabel:    p.label,
		SubStepLabel:  label,
		SubStepDetail: detail,
	})
}

// Completed emits PhaseCompleted with the elapsed duration since Start.
func (p *Phase) Completed() {
	p.reporter.Report(Event{
		Kind:        EventPhaseCompleted,
		Environment: p.environment,
		PhaseIndex:  p.index,
		PhaseTotal:  p.total,
		PhaseLabel:  p.label,
		Duration:    time.Since(p.start),
	})
}

// Failed emits PhaseFailed with the mapped error.
func (p *Phase) Failed(err error) {
	p.reporter.Report(Event{
		Kind:        EventPhaseFailed,
		Environment: p.environment,
		PhaseIndex:  p.index,
		PhaseTotal:  p.total,
		PhaseLabel:  p.label,
		Duration:    time.Since(p.start),
		Err:         err,
	})
}
