package testutils

import (
	"fmt"
	"testing"
)

type captureT struct {
	errors []string
}

func (c *captureT) Errorf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

func TestFieldMap(t *testing.T) {
	call := LogCall{Level: "info", Msg: "Target changed", Fields: []any{"from", "<none>", "to", "editor", "id", int64(7)}}

	fields := call.FieldMap(t)
	if len(fields) != 3 {
		t.Fatalf("Expected 3 fields, got %v", fields)
	}
	if fields["to"] != "editor" || fields["id"] != int64(7) {
		t.Errorf("Unexpected fields %v", fields)
	}
}

func TestFieldMap_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		fields []any
		want   int
	}{
		{"missing value", []any{"app", "editor", "orphan"}, 1},
		{"non-string key", []any{42, "value", "app", "editor"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture := &captureT{}
			fields := LogCall{Level: "warn", Msg: "x", Fields: tt.fields}.FieldMap(capture)
			if len(fields) != tt.want {
				t.Errorf("Expected %d fields, got %v", tt.want, fields)
			}
			if len(capture.errors) != 1 {
				t.Errorf("Expected one reported error, got %v", capture.errors)
			}
		})
	}
}

func TestRecordingLogger(t *testing.T) {
	logger := &RecordingLogger{}
	logger.Debug("Computed usage", "records", 2)
	logger.Warn("Interval was already closed", "id", int64(3))

	if len(logger.Calls("")) != 2 || len(logger.Calls("warn")) != 1 {
		t.Errorf("Unexpected calls %v", logger.Calls(""))
	}
	if !logger.Contains("warn", "already closed") {
		t.Error("Expected warn call to be found")
	}
	if logger.Contains("error", "already closed") {
		t.Error("Expected no error call")
	}

	id, ok := logger.Field(t, "warn", "already closed", "id")
	if !ok || id != int64(3) {
		t.Errorf("Expected id 3, got %v %v", id, ok)
	}
	if _, ok := logger.Field(t, "debug", "Computed", "missing"); ok {
		t.Error("Expected missing field to be absent")
	}
}
