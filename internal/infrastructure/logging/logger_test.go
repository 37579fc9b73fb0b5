package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"apptrack/internal/testutils"
)

// Mock RepositoryError for testing
type mockRepositoryError struct {
	message   string
	code      string
	retryable bool
	context   map[string]string
	timestamp time.Time
}

func (m *mockRepositoryError) Error() string                 { return m.message }
func (m *mockRepositoryError) GetCode() string               { return m.code }
func (m *mockRepositoryError) IsRetryable() bool             { return m.retryable }
func (m *mockRepositoryError) GetContext() map[string]string { return m.context }
func (m *mockRepositoryError) GetTimestamp() time.Time       { return m.timestamp }

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("Failed to decode log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestNewDefaultLogger(t *testing.T) {
	logger := NewDefaultLogger()
	if logger == nil {
		t.Fatal("NewDefaultLogger() returned nil")
	}
	if _, ok := logger.(*ZerologLogger); !ok {
		t.Errorf("NewDefaultLogger() returned %T, expected *ZerologLogger", logger)
	}
}

func TestZerologLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Options{Level: "warn", Format: "json", Output: &buf})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message", "app", "editor")
	logger.Error("error message")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
	if lines[0]["level"] != "warn" || lines[0]["message"] != "warn message" {
		t.Errorf("Unexpected first line: %v", lines[0])
	}
	if lines[0]["app"] != "editor" {
		t.Errorf("Expected app field 'editor', got %v", lines[0]["app"])
	}
	if lines[1]["level"] != "error" {
		t.Errorf("Expected error level, got %v", lines[1]["level"])
	}
}

func TestZerologLogger_ErrorFieldsAndOddFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Options{Level: "debug", Output: &buf})

	logger.Info("with error", "error", errors.New("boom"), "dangling")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d", len(lines))
	}
	if lines[0]["error"] != "boom" {
		t.Errorf("Expected error field 'boom', got %v", lines[0]["error"])
	}
	if lines[0]["field_1"] != "dangling" {
		t.Errorf("Expected dangling value under field_1, got %v", lines[0]["field_1"])
	}
}

func TestZerologLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Options{Level: "info", Output: &buf}).With("component", "tracker")

	logger.Info("started")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 || lines[0]["component"] != "tracker" {
		t.Errorf("Expected component field on child logger, got %v", lines)
	}
}

func TestZerologLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Options{Level: "info", Format: "text", Output: &buf})

	logger.Info("hello there", "app", "shell")

	out := buf.String()
	if !strings.Contains(out, "hello there") || !strings.Contains(out, "shell") {
		t.Errorf("Unexpected console output: %q", out)
	}
}

func TestParseLevelAndVerbosity(t *testing.T) {
	if ParseLevel("DEBUG").String() != "debug" {
		t.Errorf("Expected debug level")
	}
	if ParseLevel("bogus").String() != "info" {
		t.Errorf("Expected unknown level to default to info")
	}

	tests := map[int]string{-1: "warn", 0: "warn", 1: "info", 2: "debug", 5: "debug"}
	for count, want := range tests {
		if got := VerbosityLevel(count); got != want {
			t.Errorf("VerbosityLevel(%d) = %q, expected %q", count, got, want)
		}
	}
}

func TestLogRepositoryError(t *testing.T) {
	logger := &testutils.RecordingLogger{}
	repoErr := &mockRepositoryError{
		message:   "database is locked",
		code:      "BUSY",
		retryable: true,
		context:   map[string]string{"table": "app_intervals"},
		timestamp: time.Now(),
	}

	LogRepositoryError(logger, repoErr, "OpenInterval", map[string]interface{}{"app": "editor"})

	calls := logger.Calls("error")
	if len(calls) != 1 {
		t.Fatalf("Expected 1 error call, got %d", len(calls))
	}
	if !strings.Contains(calls[0].Msg, "Repository error") {
		t.Errorf("Expected repository error message, got %q", calls[0].Msg)
	}

	fields := calls[0].FieldMap(t)
	if fields["operation"] != "OpenInterval" {
		t.Errorf("Expected operation 'OpenInterval', got %v", fields["operation"])
	}
	if fields["error_code"] != "BUSY" {
		t.Errorf("Expected error_code 'BUSY', got %v", fields["error_code"])
	}
	if fields["table"] != "app_intervals" || fields["app"] != "editor" {
		t.Errorf("Expected context fields to be merged, got %v", fields)
	}
}

func TestLogRepositoryError_PlainError(t *testing.T) {
	logger := &testutils.RecordingLogger{}

	LogError(logger, errors.New("plain"), "CloseInterval", nil)

	calls := logger.Calls("error")
	if len(calls) != 1 {
		t.Fatalf("Expected 1 error call, got %d", len(calls))
	}
	if !strings.Contains(calls[0].Msg, "Unexpected error: plain") {
		t.Errorf("Unexpected message %q", calls[0].Msg)
	}
	fields := calls[0].FieldMap(t)
	if fields["error_type"] != "*errors.errorString" {
		t.Errorf("Expected error_type '*errors.errorString', got %v", fields["error_type"])
	}
}

func TestLogOperation(t *testing.T) {
	logger := &testutils.RecordingLogger{}

	LogOperation(logger, "AggregateAndCleanup", 1500*time.Millisecond, map[string]interface{}{"raw_deleted": int64(3)})

	calls := logger.Calls("debug")
	if len(calls) != 1 {
		t.Fatalf("Expected 1 debug call, got %d", len(calls))
	}
	fields := calls[0].FieldMap(t)
	if fields["duration_ms"] != int64(1500) {
		t.Errorf("Expected duration_ms 1500, got %v", fields["duration_ms"])
	}
	if fields["raw_deleted"] != int64(3) {
		t.Errorf("Expected raw_deleted 3, got %v", fields["raw_deleted"])
	}
}
