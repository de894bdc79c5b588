package deployerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestKindDispatchViaErrorsIs(t *testing.T) {
	err := fmt.Errorf("outer context: %w", Busy(50*time.Millisecond))
	if !errors.Is(err, &SystemError{Kind: KindBusy}) {
		t.Error("expected errors.Is to match on Kind through a wrap")
	}
	if errors.Is(err, &SystemError{Kind: KindTimeout}) {
		t.Error("Kind mismatch must not match")
	}
}

func TestUnwrapPreservesTheCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Io("/data/e2e-min/environment.json", cause)
	if !errors.Is(err, cause) {
		t.Error("expected the raw cause to be reachable through Unwrap")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected the message to narrate the cause, got %q", err.Error())
	}
}

func TestConstructorsCarryStructuredDetails(t *testing.T) {
	err := InvalidState("created", "running")
	if err.Details["expected"] != "created" || err.Details["actual"] != "running" {
		t.Errorf("unexpected details: %v", err.Details)
	}

	drv := Driver("tofu", "apply", 1, "resource exhausted", nil)
	if drv.Details["tool"] != "tofu" || drv.Details["exit_code"] != 1 {
		t.Errorf("unexpected details: %v", drv.Details)
	}
}

func TestDriverRedactsSecretShapedStderr(t *testing.T) {
	stderr := `hcloud: api_token="tok-abc123" rejected`
	err := Driver("tofu", "apply", 1, stderr, nil)

	snippet, _ := err.Details["stderr_snippet"].(string)
	if strings.Contains(snippet, "tok-abc123") {
		t.Errorf("stderr snippet leaked a token: %q", snippet)
	}
	if !strings.Contains(snippet, redactedPlaceholder) {
		t.Errorf("expected the redaction placeholder in %q", snippet)
	}
}

func TestRedactRules(t *testing.T) {
	cases := []struct {
		name string
		in   string
		leak string
	}{
		{"api token", `api_token=sk-very-secret`, "sk-very-secret"},
		{"password json", `{"password": "hunter2"}`, "hunter2"},
		{"private key assignment", `private_key=abc123`, "abc123"},
		{"bearer header", `Authorization: Bearer eyJhbGc.payload`, "eyJhbGc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Redact(tc.in)
			if strings.Contains(out, tc.leak) {
				t.Errorf("Redact(%q) leaked %q: %q", tc.in, tc.leak, out)
			}
		})
	}
}

func TestRedactLeavesOrdinaryTextAlone(t *testing.T) {
	in := "connection refused while dialing 10.0.0.5:22"
	if got := Redact(in); got != in {
		t.Errorf("Redact changed non-secret text: %q", got)
	}
}
