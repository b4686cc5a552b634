// Package appdata remembers small key/value settings between runs.
package appdata

import (
	"fmt"
	"sort"
	"strings"

	"pkt.systems/pslog"
)

// Keys written by the CLI.
const (
	KeyCredentialBackend = "credential.backend"
	KeyLastDestination   = "last.destination"
	KeyLastGenerator     = "last.generator"
	KeyLastRole          = "last.role"
	KeyLastTemplate      = "last.template"
)

// Store is a string key/value store. Set may buffer until Save.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Has(key string) (bool, error)
	Save() error
	Close() error
}

// Backend names.
const (
	BackendJSON = "json"
	BackendBolt = "bolt"
)

var backends = map[string]func(path string, logger pslog.Logger) (Store, error){
	BackendJSON: func(path string, logger pslog.Logger) (Store, error) { return OpenJSON(path, logger) },
	BackendBolt: func(path string, logger pslog.Logger) (Store, error) { return OpenBolt(path, logger) },
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

// Open opens the named backend at path.
func Open(name, path string, logger pslog.Logger) (Store, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = BackendJSON
	}
	open, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown app data backend %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return open(path, logger)
}
