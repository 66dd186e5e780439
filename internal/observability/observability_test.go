package observability

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/IshaanNene/cpubench/internal/config"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics(testLogger)
	m.TasksScheduled.Add(8)
	m.TasksSkipped.Add(5)
	m.FetchesOK.Add(3)
	m.BytesDownloaded.Add(2048)

	snap := m.Snapshot()
	if snap["tasks_scheduled"] != 8 {
		t.Errorf("expected 8 scheduled, got %d", snap["tasks_scheduled"])
	}
	if snap["tasks_skipped"] != 5 {
		t.Errorf("expected 5 skipped, got %d", snap["tasks_skipped"])
	}
	if snap["bytes_downloaded"] != 2048 {
		t.Errorf("expected 2048 bytes, got %d", snap["bytes_downloaded"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cpubench.log")
	logger, closer := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: path}, false)

	logger.Debug("hidden")
	logger.Info("skipping update", "name", "AMD Ryzen 5 5500U")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line (debug filtered), got %d: %q", len(lines), data)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "skipping update" || entry["name"] != "AMD Ryzen 5 5500U" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNewLoggerVerboseEnablesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, closer := NewLogger(config.LoggingConfig{Level: "error", Format: "text", Output: path}, true)
	logger.Debug("used link", "link", "https://example/cpu.php?id=828")
	closer.Close()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "used link") {
		t.Errorf("verbose should log debug lines, got %q", data)
	}
}
