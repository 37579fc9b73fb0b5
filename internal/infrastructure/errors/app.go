package errors

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPlatform is returned by detectors on operating systems
// without a foreground-window implementation
var ErrUnsupportedPlatform = errors.New("activity detection is not supported on this platform")

// ErrNoActivity signals that no window could be resolved this tick
var ErrNoActivity = errors.New("no foreground activity")

// DetectionError wraps a failure of a platform detector call
type DetectionError struct {
	Platform string
	Op       string
	Err      error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("detect activity (%s) %s: %v", e.Platform, e.Op, e.Err)
}

func (e *DetectionError) Unwrap() error { return e.Err }

func NewDetectionError(platform, op string, err error) *DetectionError {
	return &DetectionError{Platform: platform, Op: op, Err: err}
}

// ConfigError reports an invalid or unreadable configuration value
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// SignalSetupError reports a failure to install the interrupt handler
type SignalSetupError struct {
	Err error
}

func (e *SignalSetupError) Error() string {
	return fmt.Sprintf("install signal handler: %v", e.Err)
}

func (e *SignalSetupError) Unwrap() error { return e.Err }

func IsDetection(err error) bool {
	var target *DetectionError
	return errors.As(err, &target)
}

func IsConfig(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

func IsSignalSetup(err error) bool {
	var target *SignalSetupError
	return errors.As(err, &target)
}
