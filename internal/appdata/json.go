package appdata

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pkt.systems/pslog"
)

// JSONStore keeps values in memory and writes them to a JSON file on Save.
type JSONStore struct {
	path   string
	mu     sync.Mutex
	values map[string]string
	dirty  bool
	log    pslog.Logger
}

// OpenJSON loads path, treating a missing file as empty.
func OpenJSON(path string, logger pslog.Logger) (*JSONStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("app data path is required")
	}
	if logger != nil {
		logger = logger.With("appdata", path)
	}
	store := &JSONStore{path: path, values: make(map[string]string), log: logger}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if logger != nil {
			logger.Debug("appdata load miss")
		}
		return store, nil
	case err != nil:
		if logger != nil {
			logger.Warn("appdata load failed", "err", err)
		}
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &store.values); err != nil {
			if logger != nil {
				logger.Warn("appdata load failed", "err", err)
			}
			return nil, err
		}
	}
	if logger != nil {
		logger.Debug("appdata load ok", "keys", len(store.values))
	}
	return store, nil
}

// Get implements Store.
func (s *JSONStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok, nil
}

// Set implements Store. The value is written on Save.
func (s *JSONStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.values[key]; ok && current == value {
		return nil
	}
	s.values[key] = value
	s.dirty = true
	return nil
}

// Has implements Store.
func (s *JSONStore) Has(key string) (bool, error) {
	_, ok, err := s.Get(key)
	return ok, err
}

// Save writes the values atomically when anything changed.
func (s *JSONStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.warn(err)
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "appdata-*.json")
	if err != nil {
		s.warn(err)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		s.warn(err)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		s.warn(err)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		s.warn(err)
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		s.warn(err)
		return err
	}
	s.dirty = false
	if s.log != nil {
		s.log.Trace("appdata save ok", "keys", len(s.values))
	}
	return nil
}

// Close saves pending values.
func (s *JSONStore) Close() error {
	return s.Save()
}

func (s *JSONStore) warn(err error) {
	if s.log != nil {
		s.log.Warn("appdata save failed", "err", err)
	}
}
