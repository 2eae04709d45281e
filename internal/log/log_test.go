package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn")
	l.Info("hidden")
	l.Warn("shown", "asset", "happy.png")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "happy.png") {
		t.Errorf("warn message missing: %s", out)
	}
}

func TestWarnOnce(t *testing.T) {
	if !WarnOnce("test-key", "first") {
		t.Error("first WarnOnce should log")
	}
	if WarnOnce("test-key", "second") {
		t.Error("second WarnOnce should be suppressed")
	}
	if !WarnOnce("other-key", "other") {
		t.Error("different key should log")
	}
}
