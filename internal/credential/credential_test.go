package credential

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"pkt.systems/repostamp/schema"
)

type recorder struct {
	mu      sync.Mutex
	entries []schema.LogEntry
}

func (r *recorder) Record(category, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, schema.LogEntry{Category: category, Message: message})
}

func (r *recorder) all() []schema.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]schema.LogEntry(nil), r.entries...)
}

func TestFileStorePersistsAcrossReconstruction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "tokens.json")
	rec := &recorder{}
	store, err := Open(BackendFile, Options{Path: path, Recorder: rec})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Has("") {
		t.Fatalf("expected empty store")
	}
	store.Set("", "ghp_default")
	store.Set("work", "ghp_work")
	if !store.Has(schema.DefaultSlot) {
		t.Fatalf("expected default slot after set")
	}

	reopened, err := Open(BackendFile, Options{Path: path, Recorder: rec})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if token, ok := reopened.Load("Default"); !ok || token != "ghp_default" {
		t.Fatalf("expected default token, got %q %v", token, ok)
	}
	if token, ok := reopened.Load("work"); !ok || token != "ghp_work" {
		t.Fatalf("expected work token, got %q %v", token, ok)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}
	if entries := rec.all(); len(entries) != 0 {
		t.Fatalf("expected no log entries, got %+v", entries)
	}
}

func TestFileStoreUnreadableRecordsUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	rec := &recorder{}
	store, err := Open(BackendFile, Options{Path: path, Recorder: rec})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if token, ok := store.Load(""); ok || token != "" {
		t.Fatalf("expected no token, got %q", token)
	}
	entries := rec.all()
	if len(entries) != 1 || entries[0].Category != schema.CategoryCredential {
		t.Fatalf("expected one credential entry, got %+v", entries)
	}
	if !strings.Contains(entries[0].Message, schema.ErrCredentialUnavailable.Error()) {
		t.Fatalf("expected unavailable message, got %q", entries[0].Message)
	}
}

type failingBackend struct {
	tokens map[schema.Slot]string
	saves  int
}

func (b *failingBackend) name() string { return "failing" }

func (b *failingBackend) load() (map[schema.Slot]string, error) {
	return b.tokens, nil
}

func (b *failingBackend) save(map[schema.Slot]string) error {
	b.saves++
	return fmt.Errorf("%w: disk full", schema.ErrCredentialUnavailable)
}

func TestSetFailureIsRecordedAndClearsSlot(t *testing.T) {
	rec := &recorder{}
	b := &failingBackend{tokens: map[schema.Slot]string{"work": "old"}}
	store := newCachedStore(b, rec, nil)

	store.Set("", "new")
	if store.Has("") {
		t.Fatalf("expected default slot to stay empty after failed set")
	}
	if token, ok := store.Load("work"); !ok || token != "old" {
		t.Fatalf("expected stored token before set, got %q %v", token, ok)
	}
	store.Set("work", "replacement")
	if store.Has("work") {
		t.Fatalf("expected slot to read as empty after failed set")
	}
	if token, ok := store.Load("work"); ok || token != "" {
		t.Fatalf("expected no token after failed set, got %q %v", token, ok)
	}
	entries := rec.all()
	if len(entries) != 2 || b.saves != 2 {
		t.Fatalf("expected two recorded failures, got %+v", entries)
	}
	if !strings.Contains(entries[0].Message, "disk full") || entries[0].Category != schema.CategoryCredential {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
}

func TestInvalidSlotIsRecorded(t *testing.T) {
	rec := &recorder{}
	store := newCachedStore(&failingBackend{}, rec, nil)
	store.Set("bad slot", "token")
	if store.Has("bad slot") {
		t.Fatalf("expected invalid slot to be empty")
	}
	if len(rec.all()) != 2 {
		t.Fatalf("expected set and has to record, got %+v", rec.all())
	}
}

func TestEnvStoreIsReadOnly(t *testing.T) {
	t.Setenv("REPOSTAMP_TEST_TOKEN", "ghp_env")
	rec := &recorder{}
	store, err := Open(BackendEnv, Options{EnvVar: "REPOSTAMP_TEST_TOKEN", Recorder: rec})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if token, ok := store.Load(""); !ok || token != "ghp_env" {
		t.Fatalf("expected env token, got %q %v", token, ok)
	}
	if store.Has("work") {
		t.Fatalf("expected only the default slot")
	}
	store.Set("work", "ghp_other")
	if store.Has("work") {
		t.Fatalf("expected read-only backend to ignore set")
	}
	entries := rec.all()
	if len(entries) != 1 || !strings.Contains(entries[0].Message, schema.ErrReadOnlyBackend.Error()) {
		t.Fatalf("expected read-only entry, got %+v", entries)
	}
	if store.Backend() != BackendEnv {
		t.Fatalf("unexpected backend %q", store.Backend())
	}
}

func TestVaultStoreEncryptsAtRest(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		Path:       filepath.Join(dir, "tokens.enc"),
		BundlePath: filepath.Join(dir, "keys", "bundle.pb"),
		Recorder:   &recorder{},
	}
	store, err := Open(BackendVault, opts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	store.Set("", "ghp_secret_value")
	if !store.Has("") {
		t.Fatalf("expected token after set, log: %+v", opts.Recorder.(*recorder).all())
	}
	raw, err := os.ReadFile(opts.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if bytes.Contains(raw, []byte("ghp_secret_value")) {
		t.Fatalf("expected ciphertext on disk")
	}

	reopened, err := Open(BackendVault, opts)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if token, ok := reopened.Load(""); !ok || token != "ghp_secret_value" {
		t.Fatalf("expected decrypted token, got %q %v", token, ok)
	}
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	store, err := Open(BackendFile, Options{Path: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	store.Set("", "ghp")
	remover, ok := store.(Remover)
	if !ok {
		t.Fatalf("expected store to support removal")
	}
	if err := remover.Remove(""); err != nil {
		t.Fatalf("remove: %v", err)
	}
	reopened, _ := Open(BackendFile, Options{Path: path})
	if reopened.Has("") {
		t.Fatalf("expected slot removed on disk")
	}
}

func TestConcurrentSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	store, err := Open(BackendFile, Options{Path: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Set(schema.Slot(fmt.Sprintf("slot%d", i)), fmt.Sprintf("token-%d", i))
		}()
	}
	wg.Wait()
	reopened, _ := Open(BackendFile, Options{Path: path})
	for i := range 8 {
		if !reopened.Has(schema.Slot(fmt.Sprintf("slot%d", i))) {
			t.Fatalf("expected slot%d persisted", i)
		}
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("keychain", Options{}); err == nil {
		t.Fatalf("expected unknown backend error")
	}
	if _, err := Open(BackendFile, Options{}); err == nil {
		t.Fatalf("expected missing path error")
	}
	if got := Names(); !slices.Equal(got, []string{"env", "file", "vault"}) {
		t.Fatalf("unexpected names %v", got)
	}
}
