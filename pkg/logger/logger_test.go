package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{" warn ", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"info", LogLevelInfo},
		{"", LogLevelInfo},
		{"verbose", LogLevelInfo},
	}

	for _, tc := range testCases {
		if got := ParseLogLevel(tc.input); got != tc.expected {
			t.Errorf("ParseLogLevel(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestLoggerContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf, LogLevelDebug).
		WithComponent("dispatch").
		WithScenario("s-1").
		WithProvider("openai", "gpt-5")

	l.DebugWithIcon("🚀", "run started")

	out := buf.String()
	for _, want := range []string{"component=dispatch", "scenario=s-1", "provider=openai", "model=gpt-5", "run started"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf, LogLevelWarn)

	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn record missing: %q", out)
	}
}
