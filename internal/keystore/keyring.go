package keystore

import (
	"context"
	"errors"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
)

// KeyringManager stores the key as a generic password in the OS credential
// store.
type KeyringManager struct {
	service string
	user    string
}

func NewKeyringManager(service string) *KeyringManager {
	return &KeyringManager{service: service, user: keyUser}
}

func (m *KeyringManager) Backend() Backend { return BackendKeyring }

func (m *KeyringManager) GetOrCreateKey(ctx context.Context) (Key, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	secret, err := keyring.Get(m.service, m.user)
	switch {
	case err == nil && strings.TrimSpace(secret) != "":
		return Key(strings.TrimSpace(secret)), nil
	case err != nil && !errors.Is(err, keyring.ErrNotFound):
		return "", apperr.New(apperr.KindSecretStore, "read keyring entry", err)
	}

	key, err := GenerateKey()
	if err != nil {
		return "", err
	}
	if err := keyring.Set(m.service, m.user, string(key)); err != nil {
		return "", apperr.New(apperr.KindSecretStore, "write keyring entry", err)
	}
	return key, nil
}

func (m *KeyringManager) DeleteKey(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := keyring.Delete(m.service, m.user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return apperr.NotFound("delete keyring entry", "no key stored for %s", m.service)
		}
		return apperr.New(apperr.KindSecretStore, "delete keyring entry", err)
	}
	return nil
}
