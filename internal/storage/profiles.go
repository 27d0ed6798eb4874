package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidKey is returned for keys that cannot name a file safely.
var ErrInvalidKey = errors.New("invalid profile key")

// ProfileStore keeps per-combatant profile documents on disk as
// <dir>/<name key>.json. A zero Dir disables the store.
type ProfileStore struct {
	Dir string
}

func (p ProfileStore) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", ErrInvalidKey
	}
	return filepath.Join(p.Dir, key+".json"), nil
}

// Read returns the raw profile document for key, or ErrNotFound.
func (p ProfileStore) Read(key string) ([]byte, error) {
	if p.Dir == "" {
		return nil, ErrNotFound
	}
	fp, err := p.path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(fp)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

// Remove deletes the profile document for key. A missing file is not an
// error.
func (p ProfileStore) Remove(key string) error {
	if p.Dir == "" {
		return nil
	}
	fp, err := p.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove profile %s: %w", fp, err)
	}
	return nil
}

// Rename moves the profile document of oldKey to newKey. A missing source
// is not an error.
func (p ProfileStore) Rename(oldKey, newKey string) error {
	if p.Dir == "" || oldKey == newKey {
		return nil
	}
	from, err := p.path(oldKey)
	if err != nil {
		return err
	}
	to, err := p.path(newKey)
	if err != nil {
		return err
	}
	if err := os.Rename(from, to); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("rename profile %s: %w", from, err)
	}
	return nil
}
