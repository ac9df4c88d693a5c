package keystore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
)

const keyFileName = "encryption_key"

// DefaultDir is the per-user config directory holding the key file.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", apperr.New(apperr.KindSecretStore, "resolve config dir", err)
	}
	return filepath.Join(base, "stickynotes"), nil
}

// FileManager keeps the key in a 0600 file inside a 0700 directory.
type FileManager struct {
	dir string
}

func NewFileManager(dir string) *FileManager {
	return &FileManager{dir: dir}
}

func (m *FileManager) Backend() Backend { return BackendFile }

func (m *FileManager) Path() string { return filepath.Join(m.dir, keyFileName) }

func (m *FileManager) GetOrCreateKey(ctx context.Context) (Key, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := os.ReadFile(m.Path())
	switch {
	case err == nil:
		if v := strings.TrimSpace(string(raw)); v != "" {
			return Key(v), nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return "", apperr.New(apperr.KindSecretStore, "read key file", err)
	}

	key, err := GenerateKey()
	if err != nil {
		return "", err
	}
	if err := m.write(key); err != nil {
		return "", apperr.New(apperr.KindSecretStore, "write key file", err)
	}
	return key, nil
}

func (m *FileManager) DeleteKey(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(m.Path()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.NotFound("delete key file", "no key file at %s", m.Path())
		}
		return apperr.New(apperr.KindSecretStore, "delete key file", err)
	}
	return nil
}

func (m *FileManager) write(key Key) error {
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}
	tmp, err := os.CreateTemp(m.dir, keyFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp key file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp key file: %w", err)
	}
	if _, err := tmp.WriteString(string(key)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp key file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp key file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp key file: %w", err)
	}
	return os.Rename(tmpName, m.Path())
}
