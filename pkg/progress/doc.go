// Package progress decouples handler execution from how its progress
// is surfaced. A handler emits a finite, ordered sequence of events
// (PhaseStarted, zero or more SubSteps, then PhaseCompleted or
// PhaseFailed) through a Reporter supplied by the caller. TTY and
// Silent implementations are provided; silent is what tests use to
// inspect state transitions instead of output.
package progress
