package errors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/mattn/go-sqlite3"
)

func TestClassifySQLiteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{"nil error", nil, ErrCodeUnknown},
		{"non-sqlite error", errors.New("other"), ErrCodeUnknown},
		{"unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, ErrCodeDuplicate},
		{"primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, ErrCodeDuplicate},
		{"not null", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}, ErrCodeConstraint},
		{"busy", sqlite3.Error{Code: sqlite3.ErrBusy}, ErrCodeBusy},
		{"locked", sqlite3.Error{Code: sqlite3.ErrLocked}, ErrCodeBusy},
		{"corrupt", sqlite3.Error{Code: sqlite3.ErrCorrupt}, ErrCodeCorruption},
		{"readonly", sqlite3.Error{Code: sqlite3.ErrReadonly}, ErrCodePermission},
		{"cant open", sqlite3.Error{Code: sqlite3.ErrCantOpen}, ErrCodeConnection},
		{"full", sqlite3.Error{Code: sqlite3.ErrFull}, ErrCodeDiskSpace},
		{"misuse", sqlite3.Error{Code: sqlite3.ErrMisuse}, ErrCodeInternal},
		{"schema", sqlite3.Error{Code: sqlite3.ErrSchema}, ErrCodeSchema},
		{"wrapped busy", fmt.Errorf("exec: %w", sqlite3.Error{Code: sqlite3.ErrBusy}), ErrCodeBusy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifySQLiteError(tt.err); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{"nil", nil, ErrCodeUnknown},
		{"no rows", sql.ErrNoRows, ErrCodeNotFound},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"tx done", sql.ErrTxDone, ErrCodeTransaction},
		{"locked message", errors.New("database is locked"), ErrCodeBusy},
		{"missing table", errors.New("no such table: app_intervals"), ErrCodeSchema},
		{"disk full message", errors.New("write failed: no space left on device"), ErrCodeDiskSpace},
		{"driver wins", sqlite3.Error{Code: sqlite3.ErrCorrupt}, ErrCodeCorruption},
		{"unknown", errors.New("weird"), ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestWrapDatabaseError(t *testing.T) {
	if WrapDatabaseError("op", nil) != nil {
		t.Error("Expected nil for nil error")
	}

	err := WrapDatabaseErrorWithContext("FinalizeDangling", sqlite3.Error{Code: sqlite3.ErrBusy}, map[string]string{"rows": "2"})
	var repoErr *RepositoryError
	if !errors.As(err, &repoErr) {
		t.Fatalf("Expected *RepositoryError, got %T", err)
	}
	if repoErr.Code != ErrCodeBusy || !repoErr.Retryable {
		t.Errorf("Expected retryable BUSY error, got %v", repoErr)
	}
	if repoErr.Context["rows"] != "2" {
		t.Errorf("Expected context to be kept, got %v", repoErr.Context)
	}

	if CodeOf(HandleNotFound("GetInterval", "interval", "7")) != ErrCodeNotFound {
		t.Error("Expected HandleNotFound to produce a not-found error")
	}
	if !IsValidation(HandleValidationError("OpenInterval", "app_name", "", "must not be empty")) {
		t.Error("Expected HandleValidationError to produce a validation error")
	}
}
