package infra

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  rest_url: https://broker.example.com
  ws_url: wss://broker.example.com/ws
reconnect:
  max_jitter_ms: 2500
logging:
  level: debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.RestURL != "https://broker.example.com" {
		t.Errorf("RestURL = %q", cfg.Server.RestURL)
	}
	if cfg.Reconnect.MaxJitterMS != 2500 {
		t.Errorf("MaxJitterMS = %d, want 2500", cfg.Reconnect.MaxJitterMS)
	}
}

func TestLoadConfig_DefaultJitter(t *testing.T) {
	path := writeConfig(t, `
server:
  rest_url: http://localhost:8080
  ws_url: ws://localhost:8080/ws
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Reconnect.MaxJitterMS != 5000 {
		t.Errorf("MaxJitterMS = %d, want default 5000", cfg.Reconnect.MaxJitterMS)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  rest_url: http://localhost:8080
  ws_url: ws://localhost:8080/ws
`)

	t.Setenv("OPENBROKER_REST_URL", "https://override.example.com")
	t.Setenv("OPENBROKER_JOURNAL", "/tmp/session.db")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.RestURL != "https://override.example.com" {
		t.Errorf("RestURL = %q, want env override", cfg.Server.RestURL)
	}
	if cfg.Journal.Path != "/tmp/session.db" {
		t.Errorf("Journal.Path = %q, want env override", cfg.Journal.Path)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"BadRestURL", "server:\n  rest_url: ftp://x\n  ws_url: ws://x\n"},
		{"BadWSURL", "server:\n  rest_url: http://x\n  ws_url: http://x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.body)); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
