// Package vault stores and retrieves per-host SSH passwords in the
// system-native keyring (Keychain, Secret Service, Windows Credential
// Manager, pass), so parallax.Options.Askpass can run unattended across
// repeated invocations instead of requiring a password on every call.
package vault

import (
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"
)

const serviceName = "parallax-ssh"

var (
	ring     keyring.Keyring
	ringOnce sync.Once
	ringErr  error
)

func open() (keyring.Keyring, error) {
	ringOnce.Do(func() {
		ring, ringErr = keyring.Open(keyring.Config{
			ServiceName: serviceName,
			AllowedBackends: []keyring.BackendType{
				keyring.KeychainBackend,
				keyring.SecretServiceBackend,
				keyring.WinCredBackend,
				keyring.PassBackend,
			},
		})
	})
	return ring, ringErr
}

// Set stores a password for the given host alias.
func Set(alias, password string) error {
	kr, err := open()
	if err != nil {
		return fmt.Errorf("vault: open keyring: %w", err)
	}
	return kr.Set(keyring.Item{Key: alias, Data: []byte(password)})
}

// Get retrieves the password stored for alias. It returns an empty string,
// nil error if no entry exists - callers fall back to Options.Password or
// an interactive prompt in that case.
func Get(alias string) (string, error) {
	kr, err := open()
	if err != nil {
		return "", fmt.Errorf("vault: open keyring: %w", err)
	}
	item, err := kr.Get(alias)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("vault: retrieve password: %w", err)
	}
	return string(item.Data), nil
}

// Delete removes the stored password for alias.
func Delete(alias string) error {
	kr, err := open()
	if err != nil {
		return fmt.Errorf("vault: open keyring: %w", err)
	}
	err = kr.Remove(alias)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("vault: no password stored for %q", alias)
	}
	return err
}

// Has reports whether alias has a stored password.
func Has(alias string) bool {
	kr, err := open()
	if err != nil {
		return false
	}
	_, err = kr.Get(alias)
	return err == nil
}
