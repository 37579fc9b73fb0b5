//go:build !windows && !linux && !darwin

package platform

import (
	"runtime"

	apperrors "apptrack/internal/infrastructure/errors"
)

// NewDetector fails on platforms without a detector implementation
func NewDetector() (ActivityDetector, error) {
	return nil, apperrors.NewDetectionError(runtime.GOOS, "init", apperrors.ErrUnsupportedPlatform)
}
