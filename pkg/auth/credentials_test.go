package auth

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCredentialManager(t *testing.T) {
	manager, mockStore := NewMockManager()

	account := &Account{
		Handle:       "testuser",
		AuthToken:    "test_auth_token_12345",
		CSRFToken:    "test_csrf_token_67890",
		UserAgent:    "TestAgent/1.0",
		LastModified: time.Now(),
	}

	err := manager.Store(account)
	if err != nil {
		t.Errorf("Failed to store account: %v", err)
	}

	retrieved, err := manager.Retrieve("testuser")
	if err != nil {
		t.Errorf("Failed to retrieve account: %v", err)
	}

	if retrieved.Handle != account.Handle {
		t.Errorf("Handle mismatch: got %s, want %s", retrieved.Handle, account.Handle)
	}
	if retrieved.AuthToken != account.AuthToken {
		t.Errorf("AuthToken mismatch: got %s, want %s", retrieved.AuthToken, account.AuthToken)
	}
	if retrieved.CSRFToken != account.CSRFToken {
		t.Errorf("CSRFToken mismatch: got %s, want %s", retrieved.CSRFToken, account.CSRFToken)
	}

	accounts, err := manager.List()
	if err != nil {
		t.Errorf("Failed to list accounts: %v", err)
	}
	if len(accounts) == 0 {
		t.Error("Expected at least one account in list")
	}

	// Sanitized copies mask tokens but keep the handle readable
	sanitized := SanitizeAccount(account)
	if sanitized.AuthToken == account.AuthToken {
		t.Error("AuthToken should be masked")
	}
	if sanitized.CSRFToken == account.CSRFToken {
		t.Error("CSRFToken should be masked")
	}
	if sanitized.Handle != account.Handle {
		t.Error("Handle should not be masked")
	}

	err = manager.Delete("testuser")
	if err != nil {
		t.Errorf("Failed to delete account: %v", err)
	}

	_, err = manager.Retrieve("testuser")
	if err == nil {
		t.Error("Expected error retrieving deleted account")
	}

	if mockStore.Count() != 0 {
		t.Errorf("Expected 0 accounts after deletion, got %d", mockStore.Count())
	}
}

func TestManagerListOrdering(t *testing.T) {
	manager, mockStore := NewMockManager()

	// Seed the store directly so LastModified is preserved
	now := time.Now()
	older := &Account{
		Handle:       "older",
		AuthToken:    "token_older",
		CSRFToken:    "csrf_older",
		LastModified: now.Add(-48 * time.Hour),
	}
	newer := &Account{
		Handle:       "newer",
		AuthToken:    "token_newer",
		CSRFToken:    "csrf_newer",
		LastModified: now,
	}
	if err := mockStore.Store(older); err != nil {
		t.Fatalf("Failed to seed older account: %v", err)
	}
	if err := mockStore.Store(newer); err != nil {
		t.Fatalf("Failed to seed newer account: %v", err)
	}

	accounts, err := manager.List()
	if err != nil {
		t.Fatalf("Failed to list accounts: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("Expected 2 accounts, got %d", len(accounts))
	}
	if accounts[0].Handle != "newer" || accounts[1].Handle != "older" {
		t.Errorf("Expected most recently updated first, got [%s, %s]",
			accounts[0].Handle, accounts[1].Handle)
	}

	// The default lookup resolves to the freshest account
	def, err := manager.RetrieveDefault()
	if err != nil {
		t.Fatalf("Failed to resolve default account: %v", err)
	}
	if def.Handle != "newer" {
		t.Errorf("Expected default account newer, got %s", def.Handle)
	}
}

func TestEncryptedFileStore(t *testing.T) {
	tempFile := filepath.Join(os.TempDir(), "test_creds.enc")
	defer os.Remove(tempFile)

	os.Setenv("XSCRAPER_PASSPHRASE", "test_passphrase_123")
	defer os.Unsetenv("XSCRAPER_PASSPHRASE")

	store, err := NewEncryptedFileStore(tempFile)
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	account := &Account{
		Handle:    "encrypted_user",
		AuthToken: "encrypted_token",
		CSRFToken: "encrypted_csrf",
	}

	err = store.Store(account)
	if err != nil {
		t.Errorf("Failed to store in encrypted file: %v", err)
	}

	retrieved, err := store.Retrieve("encrypted_user")
	if err != nil {
		t.Errorf("Failed to retrieve from encrypted file: %v", err)
	}

	if retrieved.AuthToken != account.AuthToken {
		t.Errorf("AuthToken mismatch after encryption/decryption")
	}

	// Cookie values must never reach disk in the clear
	fileContent, err := os.ReadFile(tempFile)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Contains(fileContent, []byte("encrypted_token")) {
		t.Error("File contains plaintext auth token")
	}
	if bytes.Contains(fileContent, []byte("encrypted_csrf")) {
		t.Error("File contains plaintext CSRF token")
	}
}

func TestEnvironmentStore(t *testing.T) {
	os.Setenv("XSCRAPER_AUTH_TOKEN", "env_token")
	os.Setenv("XSCRAPER_CSRF_TOKEN", "env_csrf")
	defer os.Unsetenv("XSCRAPER_AUTH_TOKEN")
	defer os.Unsetenv("XSCRAPER_CSRF_TOKEN")

	store := NewEnvironmentStore()

	account, err := store.Retrieve("")
	if err != nil {
		t.Errorf("Failed to retrieve from environment: %v", err)
	}

	if account.AuthToken != "env_token" {
		t.Errorf("AuthToken mismatch: got %s, want env_token", account.AuthToken)
	}
	if account.CSRFToken != "env_csrf" {
		t.Errorf("CSRFToken mismatch: got %s, want env_csrf", account.CSRFToken)
	}

	// The environment is read-only
	err = store.Store(&Account{})
	if err != ErrStoreUnavailable {
		t.Error("Expected ErrStoreUnavailable for environment store")
	}
}

func TestRealManagerWithEncryptedStore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "xscraper-test-real")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tempDir)

	os.Setenv("XSCRAPER_PASSPHRASE", "test_passphrase_real_manager")
	defer os.Unsetenv("XSCRAPER_PASSPHRASE")

	// Keychains are not reliably available here, so the manager runs on
	// the encrypted file store alone
	encryptedStore, err := NewEncryptedFileStore(filepath.Join(tempDir, "credentials.enc"))
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	manager := NewMockManagerWithStores(encryptedStore)

	account := &Account{
		Handle:       "realuser",
		AuthToken:    "real_auth_token",
		CSRFToken:    "real_csrf_token",
		UserAgent:    "RealAgent/1.0",
		LastModified: time.Now(),
	}

	err = manager.Store(account)
	if err != nil {
		t.Fatalf("Failed to store account: %v", err)
	}

	accounts, err := manager.List()
	if err != nil {
		t.Fatalf("Failed to list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("Expected 1 account in list, got %d", len(accounts))
	}

	retrieved, err := manager.Retrieve("realuser")
	if err != nil {
		t.Fatalf("Failed to retrieve account: %v", err)
	}

	if retrieved.Handle != account.Handle {
		t.Errorf("Handle mismatch: got %s, want %s", retrieved.Handle, account.Handle)
	}
	if retrieved.AuthToken != account.AuthToken {
		t.Errorf("AuthToken mismatch: got %s, want %s", retrieved.AuthToken, account.AuthToken)
	}
}

func TestMockStore(t *testing.T) {
	store := NewMockStore()

	accounts, err := store.List()
	if err != nil {
		t.Errorf("Failed to list empty store: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("Expected 0 accounts, got %d", len(accounts))
	}

	account := &Account{
		Handle:    "mockuser",
		AuthToken: "mock_token",
		CSRFToken: "mock_csrf",
	}

	err = store.Store(account)
	if err != nil {
		t.Errorf("Failed to store account: %v", err)
	}

	if store.Count() != 1 {
		t.Errorf("Expected 1 account, got %d", store.Count())
	}

	if !store.Exists("mockuser") {
		t.Error("Account should exist")
	}

	store.ListError = fmt.Errorf("injected error")
	_, err = store.List()
	if err == nil || err.Error() != "injected error" {
		t.Error("Expected injected error")
	}
}
