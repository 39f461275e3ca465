package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "nested", "run.log")

	logger, err := New(Options{Level: "debug", Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("copy completed", String("component", "sorter"), Int("copied", 3))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "sorter: copy completed") {
		t.Fatalf("expected component prefix in output, got %q", line)
	}
	if !strings.Contains(line, "copied=3") {
		t.Fatalf("expected attribute in output, got %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigTruncatesRunLog(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "dcmsort.log")
	if err := os.WriteFile(logPath, []byte("stale contents\n"), 0o644); err != nil {
		t.Fatalf("seed log file: %v", err)
	}

	if _, err := NewFromConfig("info", "console", dir); err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(data), "stale contents") {
		t.Fatalf("expected run log to be truncated, got %q", string(data))
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
