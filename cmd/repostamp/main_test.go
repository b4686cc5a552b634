package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"pkt.systems/repostamp/internal/appconfig"
	"pkt.systems/repostamp/internal/credential"
)

func TestRootHasCommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"create", "token", "generators", "sources", "config", "doctor", "version"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected root command to include %s", name)
		}
	}
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"start=3", " test =7", "groups=a,b;c=d"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if params["start"] != "3" || params["test"] != "7" || params["groups"] != "a,b;c=d" {
		t.Fatalf("unexpected params: %+v", params)
	}
	for _, bad := range []string{"novalue", "=x"} {
		if _, err := parseParams([]string{bad}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestGeneratorsAndSourcesList(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"generators"})
	if err := root.Execute(); err != nil {
		t.Fatalf("generators: %v", err)
	}
	for _, want := range []string{"groups", "prefix", "template", "start"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("generators output missing %q:\n%s", want, out.String())
		}
	}

	root = newRootCmd()
	out.Reset()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"sources"})
	if err := root.Execute(); err != nil {
		t.Fatalf("sources: %v", err)
	}
	for _, want := range []string{"none", "inline", "csv", "round-robin", "(no parameters)"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("sources output missing %q:\n%s", want, out.String())
		}
	}
}

func TestConfigInitAndShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"-c", path, "config", "init"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	root = newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"-c", path, "config", "init"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected error when config exists")
	}

	root = newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"-c", path, "config", "show"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config show: %v", err)
	}
	var shown appconfig.Config
	if err := yaml.Unmarshal(out.Bytes(), &shown); err != nil {
		t.Fatalf("decode shown config: %v", err)
	}
	if shown.ConfigVersion != appconfig.CurrentConfigVersion || shown.Credentials.Backend != credential.BackendFile {
		t.Fatalf("unexpected shown config: %+v", shown)
	}
}

func writeTestConfig(t *testing.T, mutate func(*appconfig.Config)) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cfg, err := appconfig.DefaultConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	state := t.TempDir()
	cfg.StateDir = state
	cfg.Credentials.File = filepath.Join(state, "tokens.json")
	cfg.Credentials.VaultBundle = filepath.Join(state, "vault", "keys.bundle")
	cfg.Credentials.VaultFile = filepath.Join(state, "vault", "tokens.enc")
	cfg.AppData.Path = filepath.Join(state, "appdata.json")
	if mutate != nil {
		mutate(&cfg)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func loadConfigFromPath(t *testing.T, path string) appconfig.Config {
	t.Helper()
	cfg, err := appconfig.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

// execute runs the root command with stdin and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}
