package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"insurancecost/config"
)

func TestNewWritesToRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "service.log")
	logger, err := New(config.LogConfig{Level: "info", Format: "json", File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Info("model loaded")
	logger.Debug("hidden below level")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "model loaded") {
		t.Fatalf("expected entry in log file, got %q", content)
	}
	if strings.Contains(content, "hidden below level") {
		t.Fatalf("debug entry should be filtered at info level")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "verbose", Format: "json"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
