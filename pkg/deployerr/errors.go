package deployerr

import (
	"fmt"
	"time"
)

// Kind identifies which branch of the SystemError variant tree an
// error belongs to.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindInvalidState Kind = "invalid_state"
	KindBusy         Kind = "busy"
	KindNotFound     Kind = "not_found"
	KindIo           Kind = "io"
	KindRender       Kind = "render"
	KindDriver       Kind = "driver"
	KindTimeout      Kind = "timeout"
	KindCorrupt      Kind = "corrupt"
	KindCancelled    Kind = "cancelled"
)

// SystemError is the root of the deployer's error taxonomy.
type SystemError struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *SystemError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *SystemError) Unwrap() error { return e.Err }

func newErr(kind Kind, message string, err error, details map[string]interface{}) *SystemError {
	redacted := make(map[string]interface{}, len(details))
	for k, v := range details {
		if s, ok := v.(string); ok {
			redacted[k] = Redact(s)
			continue
		}
		redacted[k] = v
	}
	return &SystemError{Kind: kind, Message: message, Details: redacted, Err: err}
}

// Validation reports that a config value did not satisfy a domain
// invariant.
func Validation(field, reason string) *SystemError {
	return newErr(KindValidation, fmt.Sprintf("invalid config: %s", reason), nil, map[string]interface{}{
		"field":  field,
		"reason": reason,
	})
}

// InvalidState reports that a handler's precondition was not met.
func InvalidState(expected, actual string) *SystemError {
	return newErr(KindInvalidState, fmt.Sprintf("expected state %s, found %s", expected, actual), nil, map[string]interface{}{
		"expected": expected,
		"actual":   actual,
	})
}

// Busy reports that the environment lock was not acquired within the
// configured timeout.
func Busy(timeout time.Duration) *SystemError {
	return newErr(KindBusy, fmt.Sprintf("environment is locked by another operation (timeout %s)", timeout), nil, map[string]interface{}{
		"timeout": timeout.String(),
	})
}

// NotFound reports that no environment exists with the given name.
func NotFound(name string) *SystemError {
	return newErr(KindNotFound, fmt.Sprintf("no environment named %q", name), nil, map[string]interface{}{
		"name": name,
	})
}

// Io reports a filesystem failure.
func Io(path string, err error) *SystemError {
	return newErr(KindIo, fmt.Sprintf("filesystem operation failed on %s", path), err, map[string]interface{}{
		"path": path,
	})
}

// Render reports an artifact-generation failure.
func Render(template, field, reason string) *SystemError {
	return newErr(KindRender, fmt.Sprintf("failed to render %s: %s", template, reason), nil, map[string]interface{}{
		"template": template,
		"field":    field,
		"reason":   reason,
	})
}

// Driver reports an external tool invocation failure.
func Driver(tool, step string, exitCode int, stderrSnippet string, err error) *SystemError {
	return newErr(KindDriver, fmt.Sprintf("%s failed during %s (exit %d)", tool, step, exitCode), err, map[string]interface{}{
		"tool":           tool,
		"step":           step,
		"exit_code":      exitCode,
		"stderr_snippet": Redact(stderrSnippet),
	})
}

// Timeout reports that a polling loop exhausted its deadline.
func Timeout(phase string, elapsed time.Duration) *SystemError {
	return newErr(KindTimeout, fmt.Sprintf("%s did not complete within %s", phase, elapsed), nil, map[string]interface{}{
		"phase":   phase,
		"elapsed": elapsed.String(),
	})
}

// Corrupt reports that persisted data could not be parsed.
func Corrupt(what, detail string) *SystemError {
	return newErr(KindCorrupt, fmt.Sprintf("%s is corrupt: %s", what, detail), nil, map[string]interface{}{
		"what":   what,
		"detail": detail,
	})
}

// Cancelled reports that the caller requested cancellation mid-workflow.
func Cancelled() *SystemError {
	return newErr(KindCancelled, "operation cancelled", nil, nil)
}

// Is allows errors.Is(err, &SystemError{Kind: KindX}) style checks by
// comparing Kind, in addition to the usual identity/Unwrap comparisons.
func (e *SystemError) Is(target error) bool {
	other, ok := target.(*SystemError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}
