package main

import (
	"errors"
	"strings"
	"testing"

	"pkt.systems/repostamp/internal/credential"
	"pkt.systems/repostamp/schema"
)

func TestTokenSetStatusClear(t *testing.T) {
	cfgPath := writeTestConfig(t, nil)
	cfg := loadConfigFromPath(t, cfgPath)

	if _, err := execute(t, "ghp_secret\n", "-c", cfgPath, "token", "set", "--slot", "work"); err != nil {
		t.Fatalf("token set: %v", err)
	}
	store, err := credential.Open(credential.BackendFile, credential.Options{Path: cfg.Credentials.File})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if token, ok := store.Load("work"); !ok || token != "ghp_secret" {
		t.Fatalf("expected stored token, got %q %v", token, ok)
	}

	out, err := execute(t, "", "-c", cfgPath, "token", "status", "--slot", "work")
	if err != nil {
		t.Fatalf("token status: %v", err)
	}
	if !strings.Contains(out, "work (set)") || strings.Contains(out, "ghp_secret") {
		t.Fatalf("unexpected status output:\n%s", out)
	}

	if _, err := execute(t, "", "-c", cfgPath, "token", "clear", "--slot", "work"); err != nil {
		t.Fatalf("token clear: %v", err)
	}
	out, err = execute(t, "", "-c", cfgPath, "token", "status", "--slot", "work")
	if err != nil {
		t.Fatalf("token status: %v", err)
	}
	if !strings.Contains(out, "work (empty)") {
		t.Fatalf("expected empty slot:\n%s", out)
	}
}

func TestTokenSetRejectsEmptyInput(t *testing.T) {
	cfgPath := writeTestConfig(t, nil)

	if _, err := execute(t, "  \n", "-c", cfgPath, "token", "set"); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestTokenSetOnEnvBackendFails(t *testing.T) {
	cfgPath := writeTestConfig(t, nil)

	_, err := execute(t, "ghp_secret", "-c", cfgPath, "token", "--backend", credential.BackendEnv, "set")
	if !errors.Is(err, schema.ErrCredentialUnavailable) {
		t.Fatalf("expected credential unavailable, got %v", err)
	}
}

func TestTokenUseIsRemembered(t *testing.T) {
	cfgPath := writeTestConfig(t, nil)
	t.Setenv(credential.DefaultEnvVar, "ghp_env")

	if _, err := execute(t, "", "-c", cfgPath, "token", "use", "nope"); err == nil {
		t.Fatalf("expected unknown backend error")
	}
	if _, err := execute(t, "", "-c", cfgPath, "token", "use", credential.BackendEnv); err != nil {
		t.Fatalf("token use: %v", err)
	}
	out, err := execute(t, "", "-c", cfgPath, "token", "status")
	if err != nil {
		t.Fatalf("token status: %v", err)
	}
	if !strings.Contains(out, "backend: env") || !strings.Contains(out, "(set)") {
		t.Fatalf("expected remembered env backend:\n%s", out)
	}

	out, err = execute(t, "", "-c", cfgPath, "doctor", "--offline")
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if !strings.Contains(out, "credential backend env") {
		t.Fatalf("doctor did not report remembered backend:\n%s", out)
	}
}
