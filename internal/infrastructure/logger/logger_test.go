package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithWriter_JSONOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "svc", "info", "production")
	log.Info("Document generated", "kind", "invoice")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["app"] != "svc" || entry["kind"] != "invoice" {
		t.Errorf("missing attributes in %v", entry)
	}
}

func TestNewWithWriter_TextInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "svc", "warn", "local")
	log.Info("dropped")
	log.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("expected info to be filtered at warn level")
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "msg=kept") {
		t.Errorf("expected plain text output, got %q", out)
	}
	if strings.Contains(out, colorReset) {
		t.Error("expected no color codes when not writing to a terminal")
	}
}

func TestColorWriter(t *testing.T) {
	var buf bytes.Buffer
	line := []byte("time=x level=ERROR msg=boom\n")
	n, err := colorWriter{w: &buf}.Write(line)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(line) {
		t.Errorf("expected %d bytes reported, got %d", len(line), n)
	}
	if !strings.Contains(buf.String(), colorRed+"level=ERROR"+colorReset) {
		t.Errorf("expected colored level, got %q", buf.String())
	}
}
