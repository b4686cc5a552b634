package appdata

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"pkt.systems/pslog"
)

var bucketName = []byte("appdata")

// BoltStore keeps values in a bbolt database. Every Set is its own transaction.
type BoltStore struct {
	db  *bolt.DB
	log pslog.Logger
}

// OpenBolt opens or creates the database at path.
func OpenBolt(path string, logger pslog.Logger) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("app data path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		if logger != nil {
			logger.Warn("appdata open failed", "path", path, "err", err)
		}
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if logger != nil {
		logger = logger.With("appdata", path)
		logger.Debug("appdata open ok")
	}
	return &BoltStore{db: db, log: logger}, nil
}

// Get implements Store.
func (s *BoltStore) Get(key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketName).Get([]byte(key))
		if raw != nil {
			value = string(raw)
			found = true
		}
		return nil
	})
	return value, found, err
}

// Set implements Store.
func (s *BoltStore) Set(key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
	if err != nil && s.log != nil {
		s.log.Warn("appdata set failed", "key", key, "err", err)
	}
	return err
}

// Has implements Store.
func (s *BoltStore) Has(key string) (bool, error) {
	_, ok, err := s.Get(key)
	return ok, err
}

// Save flushes the database file to disk.
func (s *BoltStore) Save() error {
	return s.db.Sync()
}

// Close releases the database lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
