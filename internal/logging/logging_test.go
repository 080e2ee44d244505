package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	cases := []struct {
		level, format string
		want          zapcore.Level
	}{
		{"debug", "json", zapcore.DebugLevel},
		{"INFO", "console", zapcore.InfoLevel},
		{" warn ", "", zapcore.WarnLevel},
		{"error", "production", zapcore.ErrorLevel},
	}
	for _, tc := range cases {
		l, err := New(tc.level, tc.format)
		if err != nil {
			t.Fatalf("%s/%s: %v", tc.level, tc.format, err)
		}
		if !l.Core().Enabled(tc.want) || (tc.want > zapcore.DebugLevel && l.Core().Enabled(tc.want-1)) {
			t.Fatalf("%s: logger not at level %s", tc.level, tc.want)
		}
	}
}

func TestNewRejectsUnknownValues(t *testing.T) {
	if _, err := New("loud", "json"); err == nil {
		t.Fatalf("expected an unknown level error")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Fatalf("expected an unknown format error")
	}
}

func TestNamedToleratesNil(t *testing.T) {
	if Named(nil, "pipeline") == nil {
		t.Fatalf("expected a no-op logger")
	}
}
