package auth

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"github.com/zalando/go-keyring"
)

const (
	keyringService  = "xscraper"
	keyringPrefix   = "account_"
	keyringIndexKey = "account_index"
)

// KeyringStore implements CredentialStore using the system keychain.
// go-keyring cannot enumerate keys, so the store maintains its own
// index entry listing the stored handles.
type KeyringStore struct{}

// NewKeyringStore creates a keyring-based credential store, probing the
// keychain once so an unusable backend fails here instead of at first use
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves credentials to the system keychain and records the handle
// in the index
func (k *KeyringStore) Store(account *Account) error {
	if account == nil || account.Handle == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	if err := keyring.Set(keyringService, keyringPrefix+account.Handle, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	handles := k.readIndex()
	if !lo.Contains(handles, account.Handle) {
		return k.writeIndex(append(handles, account.Handle))
	}
	return nil
}

// Retrieve loads and decodes the account entry for the handle
func (k *KeyringStore) Retrieve(handle string) (*Account, error) {
	if handle == "" {
		return nil, ErrInvalidCredentials
	}

	data, err := keyring.Get(keyringService, keyringPrefix+handle)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var account Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &account, nil
}

// List returns every account named by the index. Handles whose entry
// has gone missing are dropped silently.
func (k *KeyringStore) List() ([]*Account, error) {
	var accounts []*Account
	for _, handle := range k.readIndex() {
		account, err := k.Retrieve(handle)
		if err != nil {
			continue
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// Delete removes credentials from the system keychain and the index
func (k *KeyringStore) Delete(handle string) error {
	if handle == "" {
		return ErrInvalidCredentials
	}

	err := keyring.Delete(keyringService, keyringPrefix+handle)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	remaining := lo.Without(k.readIndex(), handle)
	return k.writeIndex(remaining)
}

// Exists reports whether the keychain holds an entry for the handle
func (k *KeyringStore) Exists(handle string) bool {
	if handle == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+handle)
	return err == nil
}

// readIndex loads the stored handle list; a missing or corrupt index
// reads as empty
func (k *KeyringStore) readIndex() []string {
	data, err := keyring.Get(keyringService, keyringIndexKey)
	if err != nil {
		return nil
	}
	var handles []string
	if err := json.Unmarshal([]byte(data), &handles); err != nil {
		return nil
	}
	return handles
}

// writeIndex replaces the stored handle list; an emptied index is
// removed outright
func (k *KeyringStore) writeIndex(handles []string) error {
	if len(handles) == 0 {
		err := keyring.Delete(keyringService, keyringIndexKey)
		if err != nil && err != keyring.ErrNotFound {
			return fmt.Errorf("failed to clear keyring index: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(handles)
	if err != nil {
		return fmt.Errorf("failed to marshal keyring index: %w", err)
	}
	if err := keyring.Set(keyringService, keyringIndexKey, string(data)); err != nil {
		return fmt.Errorf("failed to update keyring index: %w", err)
	}
	return nil
}
