//go:build darwin

package platform

import (
	"context"

	apperrors "apptrack/internal/infrastructure/errors"
	"apptrack/internal/types"
)

const frontmostScript = `tell application "System Events"
	set frontApp to first application process whose frontmost is true
	set appName to name of frontApp
	set winTitle to ""
	try
		set winTitle to name of front window of frontApp
	end try
end tell
return appName & linefeed & winTitle`

// DarwinDetector asks System Events for the frontmost application
type DarwinDetector struct {
	run commandRunner
}

// NewDarwinDetector creates a new macOS detector instance
func NewDarwinDetector() *DarwinDetector {
	return &DarwinDetector{run: runCommand}
}

// NewDetector creates the ActivityDetector for macOS
func NewDetector() (ActivityDetector, error) {
	return NewDarwinDetector(), nil
}

func (d *DarwinDetector) GetCurrentActivity() (*types.ActivityInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), detectTimeout)
	defer cancel()

	out, err := d.run(ctx, "osascript", "-e", frontmostScript)
	if err != nil {
		return nil, apperrors.NewDetectionError("darwin", "osascript", err)
	}
	return parseOsascript(out), nil
}
