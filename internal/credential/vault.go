package credential

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/kryptograf"
	"pkt.systems/kryptograf/keymgmt"
	"pkt.systems/repostamp/schema"
)

const vaultDescriptor = "repostamp:credentials"

// vaultBackend encrypts the slot map with a data key derived from a keymgmt bundle.
type vaultBackend struct {
	path       string
	bundlePath string
}

func newVaultBackend(opts Options) (backend, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("vault token file path is required")
	}
	if strings.TrimSpace(opts.BundlePath) == "" {
		return nil, errors.New("vault key bundle path is required")
	}
	return &vaultBackend{path: opts.Path, bundlePath: opts.BundlePath}, nil
}

func (b *vaultBackend) name() string { return BackendVault }

func (b *vaultBackend) load() (map[schema.Slot]string, error) {
	file, err := os.Open(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", schema.ErrCredentialUnavailable, err)
	}
	defer func() { _ = file.Close() }()
	material, root, err := b.material()
	if err != nil {
		return nil, err
	}
	reader, err := kryptograf.New(root).DecryptReader(file, material)
	if err != nil {
		return nil, fmt.Errorf("%w: decrypt: %v", schema.ErrCredentialUnavailable, err)
	}
	defer func() { _ = reader.Close() }()
	plain, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: decrypt: %v", schema.ErrCredentialUnavailable, err)
	}
	return decodeTokens(plain)
}

func (b *vaultBackend) save(tokens map[schema.Slot]string) error {
	plain, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	material, root, err := b.material()
	if err != nil {
		return err
	}
	kg := kryptograf.New(root)
	return writeAtomic(b.path, func(w io.Writer) error {
		writer, err := kg.EncryptWriter(w, material)
		if err != nil {
			return err
		}
		if _, err := io.Copy(writer, bytes.NewReader(plain)); err != nil {
			_ = writer.Close()
			return err
		}
		return writer.Close()
	})
}

func (b *vaultBackend) material() (keymgmt.Material, keymgmt.RootKey, error) {
	if err := os.MkdirAll(filepath.Dir(b.bundlePath), 0o700); err != nil {
		return keymgmt.Material{}, keymgmt.RootKey{}, fmt.Errorf("%w: %v", schema.ErrCredentialUnavailable, err)
	}
	store, err := keymgmt.LoadProto(b.bundlePath)
	if err != nil {
		return keymgmt.Material{}, keymgmt.RootKey{}, fmt.Errorf("%w: load key bundle: %v", schema.ErrCredentialUnavailable, err)
	}
	root, err := store.EnsureRootKey()
	if err != nil {
		return keymgmt.Material{}, keymgmt.RootKey{}, fmt.Errorf("%w: root key: %v", schema.ErrCredentialUnavailable, err)
	}
	material, err := store.EnsureDescriptor(vaultDescriptor, root, []byte(vaultDescriptor))
	if err != nil {
		return keymgmt.Material{}, keymgmt.RootKey{}, fmt.Errorf("%w: descriptor: %v", schema.ErrCredentialUnavailable, err)
	}
	if err := store.Commit(); err != nil {
		return keymgmt.Material{}, keymgmt.RootKey{}, fmt.Errorf("%w: commit key bundle: %v", schema.ErrCredentialUnavailable, err)
	}
	return material, root, nil
}
