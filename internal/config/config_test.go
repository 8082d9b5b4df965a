package config

import (
	"path/filepath"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port() = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.LogLevel() != DefaultLogLevel {
		t.Errorf("LogLevel() = %s, want %s", cfg.LogLevel(), DefaultLogLevel)
	}
	if cfg.FrameRate() != DefaultFrameRate {
		t.Errorf("FrameRate() = %v, want %v", cfg.FrameRate(), DefaultFrameRate)
	}
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv(EnvPort, "9100")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvDataDir, "/tmp/cutroom-test")
	t.Setenv(EnvFrameRate, "29.97")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Port() != 9100 {
		t.Errorf("Port() = %d, want 9100", cfg.Port())
	}
	if cfg.LogLevel() != "debug" {
		t.Errorf("LogLevel() = %s, want debug", cfg.LogLevel())
	}
	if cfg.DataDir() != "/tmp/cutroom-test" {
		t.Errorf("DataDir() = %s", cfg.DataDir())
	}
	if cfg.FrameRate() != 29.97 {
		t.Errorf("FrameRate() = %v, want 29.97", cfg.FrameRate())
	}
	if got := cfg.DBPath(); got != filepath.Join("/tmp/cutroom-test", DBFilename) {
		t.Errorf("DBPath() = %s", got)
	}
	if got := cfg.MediaDir(); got != filepath.Join("/tmp/cutroom-test", "media") {
		t.Errorf("MediaDir() = %s", got)
	}
}

func TestNew_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", EnvPort, "abc"},
		{"port out of range", EnvPort, "70000"},
		{"non-numeric frame rate", EnvFrameRate, "fast"},
		{"negative frame rate", EnvFrameRate, "-24"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := New(); err == nil {
				t.Errorf("New() with %s=%s should fail", tc.key, tc.value)
			}
		})
	}
}
