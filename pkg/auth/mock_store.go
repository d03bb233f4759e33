package auth

import (
	"fmt"
	"sync"
)

// MockStore is an in-memory CredentialStore with optional error
// injection
type MockStore struct {
	accounts map[string]*Account
	mu       sync.RWMutex

	// Injected errors are returned verbatim when set
	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMockStore returns an empty in-memory store
func NewMockStore() *MockStore {
	return &MockStore{
		accounts: make(map[string]*Account),
	}
}

// Store records a copy of the account in memory
func (m *MockStore) Store(account *Account) error {
	if m.StoreError != nil {
		return m.StoreError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if account == nil || account.Handle == "" {
		return ErrInvalidCredentials
	}

	accountCopy := *account
	m.accounts[account.Handle] = &accountCopy

	return nil
}

// Retrieve returns a copy of the account stored under handle
func (m *MockStore) Retrieve(handle string) (*Account, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if handle == "" {
		return nil, ErrInvalidCredentials
	}

	account, exists := m.accounts[handle]
	if !exists {
		return nil, ErrCredentialsNotFound
	}

	// Copies keep callers from mutating stored state
	accountCopy := *account
	return &accountCopy, nil
}

// List returns copies of every stored account
func (m *MockStore) List() ([]*Account, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var accounts []*Account
	for _, account := range m.accounts {
		accountCopy := *account
		accounts = append(accounts, &accountCopy)
	}

	return accounts, nil
}

// Delete removes the account stored under handle
func (m *MockStore) Delete(handle string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if handle == "" {
		return ErrInvalidCredentials
	}

	if _, exists := m.accounts[handle]; !exists {
		return ErrCredentialsNotFound
	}

	delete(m.accounts, handle)
	return nil
}

// Exists reports whether the handle has a stored account
func (m *MockStore) Exists(handle string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.accounts[handle]
	return exists
}

// Clear empties the store between test cases
func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accounts = make(map[string]*Account)
}

// Count reports how many accounts are stored
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.accounts)
}

// GetAccount exposes a stored account for test assertions
func (m *MockStore) GetAccount(handle string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, exists := m.accounts[handle]
	if !exists {
		return nil, fmt.Errorf("account not found: %s", handle)
	}

	accountCopy := *account
	return &accountCopy, nil
}

// NewMockManager builds a Manager backed by a single in-memory store
func NewMockManager() (*Manager, *MockStore) {
	mockStore := NewMockStore()
	manager := &Manager{
		stores: []CredentialStore{mockStore},
	}
	return manager, mockStore
}

// NewMockManagerWithStores builds a Manager over the given backends
func NewMockManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{
		stores: stores,
	}
}
