package platform

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "apptrack/internal/infrastructure/errors"
	"apptrack/internal/types"
)

// parseXdotool reads the output of `xdotool getactivewindow getwindowpid getwindowname`:
// the pid on the first line, the window name on the second.
func parseXdotool(out []byte) (int, string, error) {
	lines := strings.SplitN(strings.TrimRight(string(out), "\r\n"), "\n", 2)
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return 0, "", apperrors.ErrNoActivity
	}
	pid, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || pid <= 0 {
		return 0, "", fmt.Errorf("invalid window pid %q", lines[0])
	}
	title := ""
	if len(lines) == 2 {
		title = strings.TrimSpace(lines[1])
	}
	return pid, title, nil
}

// parseOsascript reads "<app>\n<window title>" as printed by frontmostScript.
// An empty application name means no frontmost process.
func parseOsascript(out []byte) *types.ActivityInfo {
	lines := strings.SplitN(strings.TrimRight(string(out), "\r\n"), "\n", 2)
	app := strings.TrimSpace(lines[0])
	if app == "" {
		return nil
	}
	title := ""
	if len(lines) == 2 {
		title = strings.TrimSpace(lines[1])
	}
	return &types.ActivityInfo{AppName: app, MainTitle: title, DetailedTitle: title}
}

// appNameFromPath returns the file name of an executable path
func appNameFromPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		return path[i+1:]
	}
	return path
}
