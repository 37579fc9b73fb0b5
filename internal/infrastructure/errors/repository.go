package errors

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// messageCodes is the fallback for errors that did not come from the driver
var messageCodes = []struct {
	fragment string
	code     ErrorCode
}{
	{"unique constraint", ErrCodeDuplicate},
	{"foreign key constraint", ErrCodeConstraint},
	{"check constraint", ErrCodeConstraint},
	{"not null constraint", ErrCodeConstraint},
	{"database is locked", ErrCodeBusy},
	{"database disk image is malformed", ErrCodeCorruption},
	{"no such table", ErrCodeSchema},
	{"no such column", ErrCodeSchema},
	{"permission denied", ErrCodePermission},
	{"disk full", ErrCodeDiskSpace},
	{"no space left", ErrCodeDiskSpace},
	{"timeout", ErrCodeTimeout},
	{"deadlock", ErrCodeTransaction},
}

// ClassifyError classifies database errors into repository error codes
func ClassifyError(err error) ErrorCode {
	if err == nil {
		return ErrCodeUnknown
	}

	if code := classifySQLiteError(err); code != ErrCodeUnknown {
		return code
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrCodeNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrCodeTimeout
	case errors.Is(err, sql.ErrTxDone):
		return ErrCodeTransaction
	case errors.Is(err, sql.ErrConnDone):
		return ErrCodeConnection
	}

	msg := strings.ToLower(err.Error())
	for _, mc := range messageCodes {
		if strings.Contains(msg, mc.fragment) {
			return mc.code
		}
	}
	return ErrCodeUnknown
}

// WrapDatabaseError wraps a database error with repository error context
func WrapDatabaseError(op string, err error) error {
	if err == nil {
		return nil
	}
	return NewRepositoryError(op, err, ClassifyError(err))
}

// WrapDatabaseErrorWithContext is WrapDatabaseError plus context fields
func WrapDatabaseErrorWithContext(op string, err error, contextMap map[string]string) error {
	if err == nil {
		return nil
	}
	return NewRepositoryErrorWithContext(op, err, ClassifyError(err), contextMap)
}

// HandleNotFound builds a not-found error for a resource lookup
func HandleNotFound(op, resource, identifier string) error {
	return NewRepositoryErrorWithContext(op, sql.ErrNoRows, ErrCodeNotFound, map[string]string{
		"resource":   resource,
		"identifier": identifier,
	})
}

// HandleValidationError builds a validation error for a bad argument
func HandleValidationError(op, field, value, reason string) error {
	return NewRepositoryErrorWithContext(op, errors.New("validation failed: "+reason), ErrCodeValidation, map[string]string{
		"field":  field,
		"value":  value,
		"reason": reason,
	})
}
