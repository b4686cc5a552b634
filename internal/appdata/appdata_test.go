package appdata

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestBackendsRoundTrip(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "appdata."+name)
			store, err := Open(name, path, nil)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			if ok, err := store.Has(KeyCredentialBackend); err != nil || ok {
				t.Fatalf("expected empty store, got %v %v", ok, err)
			}
			if err := store.Set(KeyCredentialBackend, "vault"); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := store.Set(KeyLastDestination, "acme"); err != nil {
				t.Fatalf("set: %v", err)
			}
			if value, ok, err := store.Get(KeyCredentialBackend); err != nil || !ok || value != "vault" {
				t.Fatalf("expected vault before save, got %q %v %v", value, ok, err)
			}
			if err := store.Save(); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := store.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}

			reopened, err := Open(name, path, nil)
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer func() { _ = reopened.Close() }()
			if value, ok, err := reopened.Get(KeyLastDestination); err != nil || !ok || value != "acme" {
				t.Fatalf("expected acme after reopen, got %q %v %v", value, ok, err)
			}
		})
	}
}

func TestJSONSaveSkipsCleanStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appdata.json")
	store, err := OpenJSON(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file for a clean store, got %v", err)
	}
}

func TestJSONRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appdata.json")
	if err := os.WriteFile(path, []byte("[1,2"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := OpenJSON(path, nil); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("sqlite", filepath.Join(t.TempDir(), "x"), nil); err == nil {
		t.Fatalf("expected unknown backend error")
	}
	if got := Names(); !slices.Equal(got, []string{"bolt", "json"}) {
		t.Fatalf("unexpected names %v", got)
	}
}
