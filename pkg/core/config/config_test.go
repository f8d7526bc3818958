// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

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
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != 8080 || cfg.Server.MaxUploadBytes != 32<<20 {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Journal.Type != "memory" || cfg.Archive.Type != "" || !cfg.Metrics.Enabled {
		t.Errorf("unexpected backend defaults: journal=%q archive=%q metrics=%v",
			cfg.Journal.Type, cfg.Archive.Type, cfg.Metrics.Enabled)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad_MergesWithDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 5s
journal:
  type: sqlite
  path: /tmp/journal.db
archive:
  type: s3
  s3:
    bucket: results
    endpoint: http://localhost:9000
pdf:
  orientation: L
  font_size: 8
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout != 60*time.Second || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("defaults lost: %+v", cfg.Server)
	}
	if cfg.Journal.Type != "sqlite" || cfg.Journal.Params()["path"] != "/tmp/journal.db" {
		t.Errorf("journal = %+v", cfg.Journal)
	}
	if p := cfg.Archive.Params(); p["bucket"] != "results" || p["endpoint"] != "http://localhost:9000" {
		t.Errorf("archive params = %v", p)
	}
	if cfg.PDF.Orientation != "L" || cfg.PDF.FontSize != 8 {
		t.Errorf("pdf = %+v", cfg.PDF)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TABCONV_PORT", "7000")
	t.Setenv("TABCONV_LOG_LEVEL", "debug")
	t.Setenv("TABCONV_METRICS_ENABLED", "false")
	t.Setenv("TABCONV_ARCHIVE_TYPE", "filesystem")
	t.Setenv("TABCONV_ARCHIVE_DIR", "/var/lib/tabconv")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7000 || cfg.Logging.Level != "debug" || cfg.Metrics.Enabled {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.Archive.Type != "filesystem" || cfg.Archive.BaseDir != "/var/lib/tabconv" {
		t.Errorf("archive = %+v", cfg.Archive)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
		want string
	}{
		{"bad yaml", "server: [", nil, "failed to parse config"},
		{"bad port", "server:\n  port: 70000\n", nil, "invalid server.port"},
		{"postgres without dsn", "journal:\n  type: postgres\n", nil, "journal.dsn"},
		{"s3 without bucket", "archive:\n  type: s3\n", nil, "archive.s3.bucket"},
		{"bad env port", "", map[string]string{"TABCONV_PORT": "http"}, "TABCONV_PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
