package driver

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/cuemby/tracker-deployer/pkg/deployerr"
	"github.com/cuemby/tracker-deployer/pkg/metrics"
)

// runCommand runs name(args...) in dir with extraEnv appended to the
// inherited environment, and maps a non-zero exit to
// deployerr.Driver(tool, step, exit_code, stderr_snippet, cause).
func runCommand(ctx context.Context, tool, step, dir string, extraEnv map[string]string, name string, args ...string) (stdout string, err error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), envPairs(extraEnv)...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	runErr := cmd.Run()
	metrics.ObserveDriverInvocation(tool, runErr != nil)
	if runErr == nil {
		metrics.UpdateComponent("driver", true, "")
		return outBuf.String(), nil
	}

	exitCode := -1
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		// A non-zero exit means the tool ran and reported a failure;
		// the driver machinery itself is fine.
		exitCode = exitErr.ExitCode()
		metrics.UpdateComponent("driver", true, "")
	} else {
		metrics.UpdateComponent("driver", false, runErr.Error())
	}
	return outBuf.String(), deployerr.Driver(tool, step, exitCode, errBuf.String(), runErr)
}

func envPairs(extra map[string]string) []string {
	pairs := make([]string, 0, len(extra))
	for k, v := range extra {
		pairs = append(pairs, k+"="+v)
	}
	return pairs
}
