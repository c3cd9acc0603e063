package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/panelkit/flyout/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flyout.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9090
  read_timeout: 10s
panels:
  dir: defs
  hot_reload: true
database:
  driver: sqlite
  dsn: test.db
logging:
  level: debug
  format: console
metrics:
  enabled: true
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9090 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("read timeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Panels.Dir != "defs" || !cfg.Panels.HotReload {
		t.Errorf("panels = %+v", cfg.Panels)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "test.db" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("metrics path default missing: %q", cfg.Metrics.Path)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	def := config.Default()
	if cfg.Server.Port != def.Server.Port {
		t.Errorf("port = %d, want %d", cfg.Server.Port, def.Server.Port)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("FLYOUT_TEST_DSN", "env.db")

	path := writeConfig(t, `
database:
  driver: sqlite
  dsn: ${FLYOUT_TEST_DSN}
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.DSN != "env.db" {
		t.Errorf("dsn = %q", cfg.Database.DSN)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name, body string
	}{
		{"bad port", "server:\n  port: 99999\n"},
		{"bad driver", "database:\n  driver: postgres\n"},
		{"bad level", "logging:\n  level: verbose\n"},
		{"bad format", "logging:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.body)
			if _, err := config.Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load("/nonexistent/flyout.yaml"); err == nil {
		t.Error("expected error")
	}
}

func TestSQLiteDriverGetsDefaultDSN(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: sqlite\n")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.DSN == "" {
		t.Error("sqlite driver must default a DSN")
	}
}
