package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithLevel(&buf, "warn", true)
	l.Info("hidden")
	l.Warn("shown", "unit", "U7")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line not filtered: %s", out)
	}
	if !strings.Contains(out, `"unit":"U7"`) {
		t.Fatalf("expected JSON attr, got %s", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := NewContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatalf("logger not stored in context")
	}
	if FromContext(context.Background()) != slog.Default() {
		t.Fatalf("expected default logger")
	}
}
