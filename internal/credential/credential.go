// Package credential stores access tokens in named slots.
package credential

import (
	"fmt"
	"sort"
	"strings"

	"pkt.systems/pslog"
	"pkt.systems/repostamp/schema"
)

// Store holds one token per slot. An empty slot means schema.DefaultSlot.
type Store interface {
	Has(slot schema.Slot) bool
	// Load returns the token for slot. Backend failures are recorded, never returned.
	Load(slot schema.Slot) (string, bool)
	// Set stores token. Persist failures are recorded and leave the slot unchanged.
	Set(slot schema.Slot, token string)
	Backend() string
}

// Remover is implemented by stores that can forget a slot.
type Remover interface {
	Remove(slot schema.Slot) error
}

// Recorder receives user-facing failure entries.
type Recorder interface {
	Record(category, message string)
}

// Options configures a backend. Unused fields are ignored by each backend.
type Options struct {
	// Path is the token file for the file and vault backends.
	Path string
	// BundlePath is the keymgmt bundle holding the vault root key.
	BundlePath string
	// EnvVar names the variable read by the env backend.
	EnvVar   string
	Recorder Recorder
	Logger   pslog.Logger
}

// Backend names.
const (
	BackendFile  = "file"
	BackendVault = "vault"
	BackendEnv   = "env"
	// DefaultEnvVar is read by the env backend when Options.EnvVar is empty.
	DefaultEnvVar = "GITHUB_TOKEN"
)

var backends = map[string]func(Options) (backend, error){
	BackendFile:  newFileBackend,
	BackendVault: newVaultBackend,
	BackendEnv:   newEnvBackend,
}

// Names returns the available backend names.
func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open constructs the named backend.
func Open(name string, opts Options) (Store, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = BackendFile
	}
	ctor, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown credential backend %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	b, err := ctor(opts)
	if err != nil {
		return nil, err
	}
	return newCachedStore(b, opts.Recorder, opts.Logger), nil
}
