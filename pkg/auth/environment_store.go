package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// It is read-only and mainly serves CI and scripted runs.
type EnvironmentStore struct{}

// NewEnvironmentStore reads credentials straight from the process
// environment
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store always fails; the environment cannot be written
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve builds an account from the environment when the variables
// are present
func (e *EnvironmentStore) Retrieve(handle string) (*Account, error) {
	authToken := os.Getenv("XSCRAPER_AUTH_TOKEN")
	csrfToken := os.Getenv("XSCRAPER_CSRF_TOKEN")
	userAgent := os.Getenv("XSCRAPER_USER_AGENT")

	if authToken == "" || csrfToken == "" {
		return nil, ErrCredentialsNotFound
	}

	// Environment variables don't carry a handle, so use "default" or
	// the provided one
	if handle == "" {
		handle = "default"
	}

	return &Account{
		Handle:       handle,
		AuthToken:    authToken,
		CSRFToken:    csrfToken,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}, nil
}

// List yields at most the one environment-backed account
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete always fails; the environment cannot be written
func (e *EnvironmentStore) Delete(handle string) error {
	return ErrStoreUnavailable
}

// Exists reports whether the environment carries a usable session
func (e *EnvironmentStore) Exists(handle string) bool {
	authToken := os.Getenv("XSCRAPER_AUTH_TOKEN")
	csrfToken := os.Getenv("XSCRAPER_CSRF_TOKEN")
	return authToken != "" && csrfToken != ""
}
