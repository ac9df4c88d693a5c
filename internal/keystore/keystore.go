// Package keystore acquires and persists the database encryption key.
package keystore

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"runtime"
	"strings"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
)

const (
	KeyLength      = 32
	DefaultService = "com.stickynotes.app"
	keyUser        = "encryption_key"
	keyAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

type Key string

// String keeps the key out of formatted output and logs.
func (k Key) String() string { return "[redacted]" }

func (k Key) LogValue() slog.Value { return slog.StringValue("[redacted]") }

// Bytes returns the raw key material.
func (k Key) Bytes() []byte { return []byte(k) }

type Backend string

const (
	BackendAuto    Backend = "auto"
	BackendKeyring Backend = "keyring"
	BackendFile    Backend = "file"
)

func ParseBackend(raw string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(raw))); b {
	case "", BackendAuto:
		return BackendAuto, nil
	case BackendKeyring, BackendFile:
		return b, nil
	default:
		return "", apperr.Validation("parse key backend", "unknown backend %q", raw)
	}
}

type Manager interface {
	GetOrCreateKey(ctx context.Context) (Key, error)
	DeleteKey(ctx context.Context) error
	Backend() Backend
}

type Config struct {
	Backend Backend
	Service string
	// Dir holds the key file for the file backend.
	Dir    string
	Logger *slog.Logger
}

// New selects a backend. BackendAuto resolves to the OS credential store on
// windows and darwin and to the key file everywhere else.
func New(cfg Config) (Manager, error) {
	backend := cfg.Backend
	if backend == "" || backend == BackendAuto {
		backend = platformBackend(runtime.GOOS)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	service := cfg.Service
	if service == "" {
		service = DefaultService
	}

	switch backend {
	case BackendKeyring:
		logger.Debug("using keyring key backend", "service", service)
		return NewKeyringManager(service), nil
	case BackendFile:
		dir := cfg.Dir
		if dir == "" {
			var err error
			dir, err = DefaultDir()
			if err != nil {
				return nil, err
			}
		}
		logger.Debug("using file key backend", "dir", dir)
		return NewFileManager(dir), nil
	default:
		return nil, apperr.Validation("new key manager", "unknown backend %q", backend)
	}
}

func platformBackend(goos string) Backend {
	switch goos {
	case "windows", "darwin":
		return BackendKeyring
	default:
		return BackendFile
	}
}

// GenerateKey returns KeyLength random alphanumeric characters.
func GenerateKey() (Key, error) {
	var b strings.Builder
	b.Grow(KeyLength)
	limit := big.NewInt(int64(len(keyAlphabet)))
	for range KeyLength {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", apperr.New(apperr.KindSecretStore, "generate key", fmt.Errorf("read random: %w", err))
		}
		b.WriteByte(keyAlphabet[n.Int64()])
	}
	return Key(b.String()), nil
}
