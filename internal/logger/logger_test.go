package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Configure(Options{Level: "debug", Format: "json", Output: &buf}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	t.Cleanup(func() { _ = Configure(Options{}) })

	Info("generated game", "date", "2026-01-01", "rounds", 8)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "generated game" {
		t.Errorf("Expected msg 'generated game', got %v", entry["msg"])
	}
	if entry["date"] != "2026-01-01" {
		t.Errorf("Expected date attribute, got %v", entry["date"])
	}
}

func TestConfigureLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	if err := Configure(Options{Level: "warn", Output: &buf}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	t.Cleanup(func() { _ = Configure(Options{}) })

	Info("hidden")
	Debug("hidden too")
	if buf.Len() != 0 {
		t.Errorf("Expected info/debug to be filtered, got %q", buf.String())
	}

	Error("classifier failed", errors.New("boom"))
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("Expected error text in output, got %q", buf.String())
	}
}

func TestConfigureConsole(t *testing.T) {
	var buf bytes.Buffer
	if err := Configure(Options{Level: "info", Format: "console", Output: &buf}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	t.Cleanup(func() { _ = Configure(Options{}) })

	Get().WithGroup("filter").Info("clue dropped", "category", "ANAGRAMS")

	out := buf.String()
	if !strings.Contains(out, "clue dropped") {
		t.Errorf("Expected message in console output, got %q", out)
	}
	if !strings.Contains(out, "filter.category") {
		t.Errorf("Expected grouped attribute key, got %q", out)
	}
}

func TestConfigureRejectsUnknownValues(t *testing.T) {
	if err := Configure(Options{Level: "loud"}); err == nil {
		t.Error("Expected error for unknown level")
	}
	if err := Configure(Options{Format: "xml"}); err == nil {
		t.Error("Expected error for unknown format")
	}
}
