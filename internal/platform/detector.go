package platform

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"apptrack/internal/types"
)

// detectTimeout bounds a single helper process invocation
const detectTimeout = 2 * time.Second

// ActivityDetector reports the window the user is currently working in.
// A nil ActivityInfo with a nil error means nothing is active.
type ActivityDetector interface {
	GetCurrentActivity() (*types.ActivityInfo, error)
}

// DetectorFunc adapts a plain function to ActivityDetector
type DetectorFunc func() (*types.ActivityInfo, error)

func (f DetectorFunc) GetCurrentActivity() (*types.ActivityInfo, error) {
	return f()
}

// commandRunner executes an external helper and returns its stdout
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return nil, &commandError{err: err, stderr: string(msg)}
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

type commandError struct {
	err    error
	stderr string
}

func (e *commandError) Error() string { return e.err.Error() + ": " + e.stderr }
func (e *commandError) Unwrap() error { return e.err }
