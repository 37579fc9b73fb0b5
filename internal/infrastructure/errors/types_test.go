package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRepositoryError_Error(t *testing.T) {
	err := NewRepositoryErrorWithContext("CloseInterval", errors.New("disk I/O error"), ErrCodeConnection,
		map[string]string{"id": "42", "app": "editor"})

	got := err.Error()
	want := "disk I/O error [op=CloseInterval code=CONNECTION retryable=true app=editor id=42]"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	var nilErr *RepositoryError
	if nilErr.Error() != "repository error" {
		t.Errorf("Expected nil receiver message, got %q", nilErr.Error())
	}
}

func TestRepositoryError_ContextIsCopied(t *testing.T) {
	ctx := map[string]string{"k": "v"}
	err := NewRepositoryErrorWithContext("op", errors.New("x"), ErrCodeInternal, ctx)
	ctx["k"] = "changed"

	if err.GetContext()["k"] != "v" {
		t.Errorf("Expected context to be copied, got %v", err.GetContext())
	}
}

func TestRepositoryError_IsAndUnwrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewRepositoryError("GetInterval", sql.ErrNoRows, ErrCodeNotFound))

	if !errors.Is(err, sql.ErrNoRows) {
		t.Error("Expected errors.Is to reach sql.ErrNoRows")
	}
	if !errors.Is(err, &RepositoryError{Code: ErrCodeNotFound}) {
		t.Error("Expected errors.Is to match by code")
	}
	if errors.Is(err, &RepositoryError{Code: ErrCodeBusy}) {
		t.Error("Expected errors.Is not to match a different code")
	}
	if CodeOf(err) != ErrCodeNotFound {
		t.Error("Unexpected predicate results")
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		code ErrorCode
		err  error
		want bool
	}{
		{ErrCodeBusy, nil, true},
		{ErrCodeConnection, nil, true},
		{ErrCodeValidation, nil, false},
		{ErrCodeDiskSpace, nil, false},
		{ErrCodeUnknown, errors.New("table is locked"), true},
		{ErrCodeUnknown, errors.New("syntax error"), false},
		{ErrCodeUnknown, nil, false},
	}

	for _, tt := range tests {
		if got := isRetryableError(tt.code, tt.err); got != tt.want {
			t.Errorf("isRetryableError(%v, %v) = %v, expected %v", tt.code, tt.err, got, tt.want)
		}
	}
}

func TestErrorCodeString(t *testing.T) {
	if ErrCodeDiskSpace.String() != "DISK_SPACE" {
		t.Errorf("Expected DISK_SPACE, got %s", ErrCodeDiskSpace)
	}
	if ErrorCode(999).String() != "UNKNOWN" {
		t.Errorf("Expected UNKNOWN for out-of-range code")
	}
}

func TestAppErrors(t *testing.T) {
	det := fmt.Errorf("tick: %w", NewDetectionError("linux", "xdotool", ErrNoActivity))
	if !IsDetection(det) || !errors.Is(det, ErrNoActivity) {
		t.Errorf("Expected detection error wrapping ErrNoActivity, got %v", det)
	}
	if !strings.Contains(det.Error(), "linux") {
		t.Errorf("Expected platform in message, got %q", det.Error())
	}

	cfg := &ConfigError{Key: "tracking.poll_interval", Err: errors.New("must be positive")}
	if !IsConfig(cfg) || cfg.Error() != "config tracking.poll_interval: must be positive" {
		t.Errorf("Unexpected config error: %v", cfg)
	}

	sig := &SignalSetupError{Err: errors.New("already installed")}
	if !IsSignalSetup(sig) || IsConfig(sig) {
		t.Errorf("Unexpected signal error classification")
	}
}

func TestCodePredicates(t *testing.T) {
	tests := []struct {
		code ErrorCode
		is   func(error) bool
	}{
		{ErrCodeConnection, IsConnection},
		{ErrCodeValidation, IsValidation},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := fmt.Errorf("aggregate: %w", NewRepositoryError("AggregateAndCleanup", errors.New("boom"), tt.code))
			if !tt.is(err) {
				t.Errorf("Expected wrapped %v to match", tt.code)
			}
			if CodeOf(err) != tt.code {
				t.Errorf("Expected CodeOf %v, got %v", tt.code, CodeOf(err))
			}
			if tt.is(errors.New("plain")) || CodeOf(errors.New("plain")) != ErrCodeUnknown {
				t.Errorf("Expected plain error not to match %v", tt.code)
			}
		})
	}
}
