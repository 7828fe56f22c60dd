package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("debug"); err != nil {
		t.Errorf("Validate(debug) = %v", err)
	}
	if err := Validate("loud"); err == nil {
		t.Error("Validate(loud) should fail")
	}
	if err := ValidateFormat("json"); err != nil {
		t.Errorf("ValidateFormat(json) = %v", err)
	}
	if err := ValidateFormat("xml"); err == nil {
		t.Error("ValidateFormat(xml) should fail")
	}
}

func TestSetupJSON(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	if err := Setup(Options{Level: "warn", Format: "json", Output: &buf}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	slog.Info("hidden")
	slog.Warn("shown", "channel", "public")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["msg"] != "shown" || rec["channel"] != "public" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestSetupRejectsBadOptions(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	if err := Setup(Options{Level: "nope"}); err == nil {
		t.Error("bad level accepted")
	}
	if err := Setup(Options{Format: "yaml"}); err == nil {
		t.Error("bad format accepted")
	}
}

func TestNewHandlerDebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(Options{Level: "debug", Format: FormatJSON, Output: &buf})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	slog.New(h).Debug("trace")
	if !strings.Contains(buf.String(), `"source"`) {
		t.Errorf("debug record without source: %q", buf.String())
	}
}
