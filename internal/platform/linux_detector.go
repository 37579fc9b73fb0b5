//go:build linux

package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "apptrack/internal/infrastructure/errors"
	"apptrack/internal/types"
)

// LinuxDetector reads the active X11 window through xdotool
type LinuxDetector struct {
	run      commandRunner
	procRoot string
}

// NewLinuxDetector creates a new Linux detector instance
func NewLinuxDetector() *LinuxDetector {
	return &LinuxDetector{run: runCommand, procRoot: "/proc"}
}

// NewDetector creates the ActivityDetector for Linux
func NewDetector() (ActivityDetector, error) {
	return NewLinuxDetector(), nil
}

// GetCurrentActivity returns the process name and title of the active window.
// X11 exposes no child window titles, so both titles carry the window name.
func (l *LinuxDetector) GetCurrentActivity() (*types.ActivityInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), detectTimeout)
	defer cancel()

	out, err := l.run(ctx, "xdotool", "getactivewindow", "getwindowpid", "getwindowname")
	if err != nil {
		return nil, apperrors.NewDetectionError("linux", "xdotool", err)
	}

	pid, title, err := parseXdotool(out)
	if err != nil {
		return nil, apperrors.NewDetectionError("linux", "parse", err)
	}

	comm, err := os.ReadFile(filepath.Join(l.procRoot, fmt.Sprint(pid), "comm"))
	if err != nil {
		return nil, apperrors.NewDetectionError("linux", "read comm", err)
	}

	return &types.ActivityInfo{
		AppName:       strings.TrimSpace(string(comm)),
		MainTitle:     title,
		DetailedTitle: title,
	}, nil
}
