package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/repostamp/schema"
)

type fileBackend struct {
	path string
}

func newFileBackend(opts Options) (backend, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("credential file path is required")
	}
	return &fileBackend{path: opts.Path}, nil
}

func (b *fileBackend) name() string { return BackendFile }

func (b *fileBackend) load() (map[schema.Slot]string, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", schema.ErrCredentialUnavailable, err)
	}
	return decodeTokens(data)
}

func (b *fileBackend) save(tokens map[schema.Slot]string) error {
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(b.path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func decodeTokens(data []byte) (map[schema.Slot]string, error) {
	tokens := make(map[schema.Slot]string)
	if len(strings.TrimSpace(string(data))) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("%w: decode tokens: %v", schema.ErrCredentialUnavailable, err)
	}
	return tokens, nil
}

// writeAtomic writes path through a synced 0600 temp file in the same directory.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: %v", schema.ErrCredentialUnavailable, err)
	}
	tmp, err := os.CreateTemp(dir, ".tokens-*")
	if err != nil {
		return fmt.Errorf("%w: %v", schema.ErrCredentialUnavailable, err)
	}
	tmpPath := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", schema.ErrCredentialUnavailable, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		return fail(err)
	}
	if err := write(tmp); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", schema.ErrCredentialUnavailable, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", schema.ErrCredentialUnavailable, err)
	}
	return nil
}
