package credential

import (
	"fmt"
	"maps"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/repostamp/schema"
)

// backend persists the whole slot map.
type backend interface {
	name() string
	load() (map[schema.Slot]string, error)
	save(tokens map[schema.Slot]string) error
}

type cachedStore struct {
	mu       sync.Mutex
	backend  backend
	tokens   map[schema.Slot]string
	loaded   bool
	recorder Recorder
	log      pslog.Logger
}

func newCachedStore(b backend, recorder Recorder, logger pslog.Logger) *cachedStore {
	if logger != nil {
		logger = logger.With("credential_backend", b.name())
	}
	return &cachedStore{backend: b, recorder: recorder, log: logger}
}

func (s *cachedStore) Backend() string {
	return s.backend.name()
}

func (s *cachedStore) Has(slot schema.Slot) bool {
	_, ok := s.Load(slot)
	return ok
}

func (s *cachedStore) Load(slot schema.Slot) (string, bool) {
	normalized, err := schema.NormalizeSlot(slot)
	if err != nil {
		s.record(err)
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ensureLoaded() {
		return "", false
	}
	token, ok := s.tokens[normalized]
	if ok && token == "" {
		ok = false
	}
	if s.log != nil {
		s.log.Trace("credential load", "slot", normalized, "found", ok)
	}
	return token, ok
}

func (s *cachedStore) Set(slot schema.Slot, token string) {
	normalized, err := schema.NormalizeSlot(slot)
	if err != nil {
		s.record(err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ensureLoaded() {
		return
	}
	s.tokens[normalized] = token
	if err := s.backend.save(maps.Clone(s.tokens)); err != nil {
		// A slot whose token could not be persisted reads as empty.
		delete(s.tokens, normalized)
		if s.log != nil {
			s.log.Warn("credential save failed", "slot", normalized, "err", err)
		}
		s.record(fmt.Errorf("store token for slot %s: %w", normalized, err))
		return
	}
	if s.log != nil {
		s.log.Info("credential save ok", "slot", normalized)
	}
}

func (s *cachedStore) Remove(slot schema.Slot) error {
	normalized, err := schema.NormalizeSlot(slot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ensureLoaded() {
		return schema.ErrCredentialUnavailable
	}
	previous, had := s.tokens[normalized]
	if !had {
		return nil
	}
	delete(s.tokens, normalized)
	if err := s.backend.save(maps.Clone(s.tokens)); err != nil {
		s.tokens[normalized] = previous
		if s.log != nil {
			s.log.Warn("credential remove failed", "slot", normalized, "err", err)
		}
		return err
	}
	if s.log != nil {
		s.log.Info("credential remove ok", "slot", normalized)
	}
	return nil
}

// ensureLoaded must be called with s.mu held.
func (s *cachedStore) ensureLoaded() bool {
	if s.loaded {
		return true
	}
	tokens, err := s.backend.load()
	if err != nil {
		if s.log != nil {
			s.log.Warn("credential load failed", "err", err)
		}
		s.record(err)
		return false
	}
	if tokens == nil {
		tokens = make(map[schema.Slot]string)
	}
	s.tokens = tokens
	s.loaded = true
	return true
}

func (s *cachedStore) record(err error) {
	if s.recorder != nil {
		s.recorder.Record(schema.CategoryCredential, fmt.Sprintf("%s backend: %v", s.backend.name(), err))
	}
}
