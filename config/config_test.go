package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Http.Port != 8000 {
		t.Fatalf("expected default port 8000, got %d", config.Http.Port)
	}
	if !config.Response.Round || config.Response.Decimals != 2 {
		t.Fatalf("expected rounding to 2 decimals by default: %+v", config.Response)
	}
	if len(config.Model.Strategies) != 2 || config.Model.Strategies[0] != "pipeline" {
		t.Fatalf("unexpected strategies: %v", config.Model.Strategies)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 9090
  read_timeout: 5s
model:
  path: /srv/model.gob
  strategies: [gob]
  prediction_column: prediction
response:
  round: false
log:
  level: debug
  format: console
`)
	config, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Http.Port != 9090 || config.Http.ReadTimeout != 5*time.Second {
		t.Fatalf("http section not applied: %+v", config.Http)
	}
	if config.Http.MaxBodyBytes != 1<<20 {
		t.Fatalf("expected untouched default body limit, got %d", config.Http.MaxBodyBytes)
	}
	if config.Model.Path != "/srv/model.gob" || config.Model.PredictionColumn != "prediction" {
		t.Fatalf("model section not applied: %+v", config.Model)
	}
	if config.Response.Round {
		t.Fatal("expected rounding disabled")
	}
	if config.Log.Format != "console" {
		t.Fatalf("expected console format, got %s", config.Log.Format)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
model:
  strategies: [pickle]
log:
  level: loud
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "Strategies") || !strings.Contains(err.Error(), "Level") {
		t.Fatalf("expected both fields in error, got %v", err)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "http: [port")
	if _, err := Load(path); err == nil {
		t.Fatal("expected decode error")
	}
}
