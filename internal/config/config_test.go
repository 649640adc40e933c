package config

import (
	"path/filepath"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"FORG_ENV", "FORG_BACKEND", "FORG_DB", "FORG_KEY", "FORG_WORKERS", "FORG_THUMB_MAX_BYTES", "FORG_MINIO_SECURE", "FORG_LOCALE"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	if cfg.Backend != "sqlite" {
		t.Errorf("Backend = %q; want sqlite", cfg.Backend)
	}
	if cfg.Key != "fo_files_v1" {
		t.Errorf("Key = %q; want fo_files_v1", cfg.Key)
	}
	if cfg.Workers != 16 || cfg.ThumbMaxBytes != 20<<20 {
		t.Errorf("Workers = %d, ThumbMaxBytes = %d", cfg.Workers, cfg.ThumbMaxBytes)
	}
	if cfg.MinioSecure {
		t.Error("MinioSecure should default to false")
	}
	if cfg.Env != "production" || cfg.IsDevelopment() {
		t.Errorf("Env = %q; want production", cfg.Env)
	}
	if filepath.Base(cfg.DBPath) != "forg.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("FORG_ENV", "development")
	t.Setenv("FORG_BACKEND", "minio")
	t.Setenv("FORG_DB", "/tmp/x.db")
	t.Setenv("FORG_WORKERS", "4")
	t.Setenv("FORG_THUMB_MAX_BYTES", "1024")
	t.Setenv("FORG_MINIO_SECURE", "true")
	t.Setenv("FORG_MINIO_PREFIX", "team/")

	cfg := FromEnv()
	if !cfg.IsDevelopment() {
		t.Error("expected development env")
	}
	if cfg.Backend != "minio" || cfg.DBPath != "/tmp/x.db" || cfg.MinioPrefix != "team/" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Workers != 4 || cfg.ThumbMaxBytes != 1024 || !cfg.MinioSecure {
		t.Errorf("unexpected numeric/bool config: %+v", cfg)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	tests := []struct {
		key, value string
		check      func(*Config) bool
	}{
		{"FORG_WORKERS", "many", func(c *Config) bool { return c.Workers == 16 }},
		{"FORG_WORKERS", "-2", func(c *Config) bool { return c.Workers == 16 }},
		{"FORG_THUMB_MAX_BYTES", "big", func(c *Config) bool { return c.ThumbMaxBytes == 20<<20 }},
		{"FORG_MINIO_SECURE", "maybe", func(c *Config) bool { return !c.MinioSecure }},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if !tt.check(FromEnv()) {
				t.Errorf("%s=%q did not fall back to default", tt.key, tt.value)
			}
		})
	}
}
