package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestCompactHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	l.Info("ranked graph", "nodes", 4, "damping", 0.85, "scenario", "base case")

	line := buf.String()
	if !strings.HasPrefix(line, "[INFO]  ") {
		t.Errorf("Expected INFO prefix, got %q", line)
	}
	for _, want := range []string{"ranked graph |", "nodes=4", "damping=0.85", `scenario="base case"`} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
}

func TestCompactHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	l.Info("hidden")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected no output below WARN, got %q", buf.String())
	}

	l.Warn("shown")
	if !strings.HasPrefix(buf.String(), "[WARN]  ") {
		t.Errorf("Expected WARN prefix, got %q", buf.String())
	}
}

func TestCompactHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewCompactHandler(&buf, nil)).With("component", "rank")

	l.Info("solved")

	if !strings.Contains(buf.String(), "| component=rank") {
		t.Errorf("Expected handler attrs in output, got %q", buf.String())
	}
}

func TestCompactHandler_RunIDShortened(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewCompactHandler(&buf, nil))

	l.Info("box done", "runID", "0123456789abcdef")

	if !strings.Contains(buf.String(), "run=01234567") {
		t.Errorf("Expected shortened run ID, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "89abcdef") {
		t.Errorf("Run ID should be truncated, got %q", buf.String())
	}
}

func TestRunIDContext(t *testing.T) {
	ctx := context.Background()
	if got := GetRunID(ctx); got != "" {
		t.Errorf("Expected empty run ID, got %q", got)
	}

	id := NewRunID()
	ctx = WithRunID(ctx, id)
	if got := GetRunID(ctx); got != id {
		t.Errorf("GetRunID() = %q, want %q", got, id)
	}

	args := withRunID(ctx, []any{"box", 1})
	if len(args) != 4 || args[0] != "runID" || args[1] != id {
		t.Errorf("withRunID() = %v", args)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.name); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
