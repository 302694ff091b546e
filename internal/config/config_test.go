package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("{}"), "gcl.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxCallDepth != DefaultMaxCallDepth {
		t.Errorf("MaxCallDepth = %d, want %d", cfg.MaxCallDepth, DefaultMaxCallDepth)
	}
	if cfg.LogFormat != LogFormatText {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, LogFormatText)
	}
	if cfg.Color != ColorAuto {
		t.Errorf("Color = %q, want %q", cfg.Color, ColorAuto)
	}
	if cfg.Level() != slog.LevelWarn {
		t.Errorf("Level = %v, want warn", cfg.Level())
	}
}

func TestParseConfigValues(t *testing.T) {
	input := `
max_call_depth: 64
log_level: debug
log_format: JSON
transcript: session.db
color: never
`
	cfg, err := ParseConfig([]byte(input), "gcl.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxCallDepth != 64 {
		t.Errorf("MaxCallDepth = %d, want 64", cfg.MaxCallDepth)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level = %v, want debug", cfg.Level())
	}
	if cfg.LogFormat != LogFormatJSON {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if cfg.Transcript != "session.db" {
		t.Errorf("Transcript = %q", cfg.Transcript)
	}
	if cfg.Color != ColorNever {
		t.Errorf("Color = %q", cfg.Color)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"negative depth", "max_call_depth: -1", "must not be negative"},
		{"huge depth", "max_call_depth: 100000000", "exceeds the limit"},
		{"bad level", "log_level: loud", "log_level"},
		{"bad format", "log_format: xml", "log_format"},
		{"bad color", "color: sometimes", "color"},
		{"bad yaml", "max_call_depth: [", "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.input), "gcl.yaml")
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestLoadConfigResolvesTranscript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gcl.yaml")
	if err := os.WriteFile(path, []byte("transcript: out/log.db\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := filepath.Join(dir, "out", "log.db")
	if cfg.Transcript != want {
		t.Errorf("Transcript = %q, want %q", cfg.Transcript, want)
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, "gcl.yml")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if found != path {
		t.Errorf("found %q, want %q", found, path)
	}
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "info", LogFormat: LogFormatJSON}
	cfg.setDefaults()
	cfg.Logger(&buf).Info("hello", slog.Int("n", 1))
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"n":1`) {
		t.Errorf("expected JSON log line, got %q", buf.String())
	}
}
