package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pkt.systems/repostamp/schema"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Run.MaxRepos != schema.DefaultMaxRepos || cfg.Log.Capacity != schema.DefaultLogCapacity {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Credentials.Backend != "file" || cfg.AppData.Backend != "json" {
		t.Fatalf("unexpected backends %+v %+v", cfg.Credentials, cfg.AppData)
	}
	if cfg.GitHub.Timeout() != 30*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.GitHub.Timeout())
	}
	run := cfg.CreatorConfig()
	if run.DefaultRole != schema.RoleMaintain || run.DefaultTemplate != "Python" {
		t.Fatalf("unexpected creator config %+v", run)
	}
}

func TestLoadOverridesAndExpands(t *testing.T) {
	t.Setenv("REPOSTAMP_STATE", "/srv/repostamp")
	path := writeConfig(t, `
config_version: 1
state_dir: $REPOSTAMP_STATE
github:
  base_url: https://ghe.example.com/api/v3/
  timeout_seconds: 5
credentials:
  backend: vault
  vault_bundle: $REPOSTAMP_STATE/keys.bundle
  vault_file: $REPOSTAMP_STATE/tokens.enc
appdata:
  backend: bolt
  path: $REPOSTAMP_STATE/appdata.db
run:
  max_repos: 20
  default_role: write
  private: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StateDir != "/srv/repostamp" || cfg.Credentials.VaultFile != "/srv/repostamp/tokens.enc" {
		t.Fatalf("expected env expansion, got %+v", cfg)
	}
	if cfg.AppData.Path != "/srv/repostamp/appdata.db" || cfg.AppData.Backend != "bolt" {
		t.Fatalf("unexpected appdata %+v", cfg.AppData)
	}
	if cfg.Run.MaxRepos != 20 || cfg.Run.DefaultRole != "write" || cfg.Run.Private {
		t.Fatalf("unexpected run section %+v", cfg.Run)
	}
	if cfg.Run.DefaultTemplate != "Python" {
		t.Fatalf("expected template default kept, got %q", cfg.Run.DefaultTemplate)
	}
	if cfg.GitHub.Timeout() != 5*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.GitHub.Timeout())
	}
}

func TestLoadRejectsUnsupportedConfigVersion(t *testing.T) {
	path := writeConfig(t, `
config_version: 7
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unsupported config_version") {
		t.Fatalf("expected config_version error, got %v", err)
	}
}

func TestLoadValidatesSections(t *testing.T) {
	cases := map[string]string{
		"DefaultRole": `
config_version: 1
run:
  default_role: owner
`,
		"Backend": `
config_version: 1
credentials:
  backend: keychain
`,
		"BaseURL": `
config_version: 1
github:
  base_url: "not a url"
`,
		"Capacity": `
config_version: 1
log:
  capacity: 0
`,
		"MaxRepos": `
config_version: 1
run:
  max_repos: -3
`,
	}
	for field, content := range cases {
		path := writeConfig(t, content)
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), field) {
			t.Fatalf("%s: expected validation error, got %v", field, err)
		}
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("FOO", "bar")
	value := expandEnv("$FOO/$UID/$GID/$MISSING")
	if !strings.HasPrefix(value, "bar/") {
		t.Fatalf("expected env expansion, got %q", value)
	}
	if strings.Contains(value, "$UID") || strings.Contains(value, "$GID") {
		t.Fatalf("expected UID/GID expansion, got %q", value)
	}
	if !strings.HasSuffix(value, "/$MISSING") {
		t.Fatalf("expected missing vars to remain, got %q", value)
	}
}

func TestWriteDefaultRespectsOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	written, err := WriteDefault(path, false)
	if err != nil {
		t.Fatalf("write default: %v", err)
	}
	if written != path {
		t.Fatalf("expected path %q, got %q", path, written)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("expected written default to load: %v", err)
	}
	if _, err := WriteDefault(path, false); err == nil {
		t.Fatalf("expected error when config exists")
	}
	if _, err := WriteDefault(path, true); err != nil {
		t.Fatalf("expected overwrite to succeed: %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
