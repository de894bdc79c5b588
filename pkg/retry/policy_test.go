package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cuemby/tracker-deployer/pkg/deployerr"
)

func TestRunSucceedsAfterRetries(t *testing.T) {
	attempts := 0
	p := Policy{Initial: time.Millisecond, Cap: 5 * time.Millisecond, Timeout: time.Second}

	err := p.Run(context.Background(), "ssh-reachability", func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("not ready yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRunReportsTimeout(t *testing.T) {
	p := Policy{Initial: time.Millisecond, Cap: 2 * time.Millisecond, Timeout: 20 * time.Millisecond}

	err := p.Run(context.Background(), "cloud-init", func(ctx context.Context) error {
		return errors.New("still pending")
	})
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	var sysErr *deployerr.SystemError
	if !errors.As(err, &sysErr) || sysErr.Kind != deployerr.KindTimeout {
		t.Fatalf("expected a Timeout SystemError, got %v", err)
	}
}

func TestRunReportsCancellation(t *testing.T) {
	p := Policy{Initial: time.Millisecond, Cap: 2 * time.Millisecond, Timeout: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx, "health-check", func(ctx context.Context) error {
		return errors.New("not ready")
	})
	if err == nil {
		t.Fatal("expected a cancellation error")
	}
	var sysErr *deployerr.SystemError
	if !errors.As(err, &sysErr) || sysErr.Kind != deployerr.KindCancelled {
		t.Fatalf("expected a Cancelled SystemError, got %v", err)
	}
}
