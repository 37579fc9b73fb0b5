package testutils

// TestingT is the part of testing.T the field helpers report through
type TestingT interface {
	Errorf(format string, args ...any)
}

// FieldMap turns the call's alternating key/value fields into a map.
// Malformed pairs are reported on t and skipped.
func (c LogCall) FieldMap(t TestingT) map[string]any {
	fields := make(map[string]any, len(c.Fields)/2)
	for i := 0; i < len(c.Fields); i += 2 {
		if i+1 >= len(c.Fields) {
			t.Errorf("%s %q: key at index %d has no value", c.Level, c.Msg, i)
			break
		}
		key, ok := c.Fields[i].(string)
		if !ok {
			t.Errorf("%s %q: key at index %d is %T, not string", c.Level, c.Msg, i, c.Fields[i])
			continue
		}
		fields[key] = c.Fields[i+1]
	}
	return fields
}

// Field returns the value logged under key in the first call at level whose
// message contains substr
func (r *RecordingLogger) Field(t TestingT, level, substr, key string) (any, bool) {
	for _, c := range r.Calls(level) {
		if containsMsg(c, substr) {
			v, ok := c.FieldMap(t)[key]
			return v, ok
		}
	}
	return nil, false
}
