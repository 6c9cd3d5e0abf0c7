package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "procure-console"

// TokenKey is the keyring entry holding the API session token.
const TokenKey = "session-token"

// MailboxPasswordKey is the keyring entry holding the IMAP password.
const MailboxPasswordKey = "mailbox-password"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/procure/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("procure-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// KeyringStore adapts the system keyring to the token storage
// interface consumed by the session manager.
type KeyringStore struct{}

// LoadToken returns the stored session token, or empty when absent.
// A missing entry is not an error for bootstrap purposes.
func (KeyringStore) LoadToken() (string, error) {
	token, err := Get(TokenKey)
	if err != nil {
		return "", nil
	}
	return token, nil
}

// SaveToken persists the session token.
func (KeyringStore) SaveToken(token string) error {
	return Set(TokenKey, token)
}

// ClearToken forgets the stored session token.
func (KeyringStore) ClearToken() error {
	return Delete(TokenKey)
}
