package handler

import (
	"context"
	"errors"

	"github.com/cuemby/tracker-deployer/pkg/health"
)

// asProbe adapts a health.Checker into a retry.Probe: nil on a
// healthy result, an error describing the failure otherwise.
func asProbe(c health.Checker) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		result := c.Check(ctx)
		if result.Healthy {
			return nil
		}
		return errors.New(result.Message)
	}
}
