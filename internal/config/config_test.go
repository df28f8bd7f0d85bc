package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PageSize != DefaultPageSize {
		t.Errorf("PageSize = %d, want %d", cfg.PageSize, DefaultPageSize)
	}
	if cfg.Environment != DefaultEnvironment {
		t.Errorf("Environment = %q, want %q", cfg.Environment, DefaultEnvironment)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", cfg.HTTPTimeout)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "baseUrl: http://backend:9000\npageSize: 5\nheaders:\n  X-Team: core\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), FilePermissions); err != nil {
		t.Fatal(err)
	}

	t.Setenv("APICONSOLE_PAGE_SIZE", "7")
	t.Setenv("LOG_COMPRESS", "off")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseURL != "http://backend:9000" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.PageSize != 7 {
		t.Errorf("PageSize = %d, want env override 7", cfg.PageSize)
	}
	if cfg.Headers["X-Team"] != "core" {
		t.Errorf("Headers = %v", cfg.Headers)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Log.Compress {
		t.Error("Log.Compress should be overridden to false")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("APICONSOLE_PAGE_SIZE", "0")
	if _, err := Load(""); err == nil {
		t.Error("expected error for zero page size")
	}
}

func TestInitializeAt(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "home")
	if err := InitializeAt(dir); err != nil {
		t.Fatalf("InitializeAt() error = %v", err)
	}
	if _, err := os.Stat(LogDir); err != nil {
		t.Errorf("log dir not created: %v", err)
	}
	cfg := Default()
	if got := cfg.LogFilePath(); got != filepath.Join(dir, "logs", "apiconsole.log") {
		t.Errorf("LogFilePath() = %q", got)
	}
}
