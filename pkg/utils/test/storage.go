// Package testutils provides test doubles shared across creatormem package suites.
package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/creatormem/pkg/record"
	"github.com/papercomputeco/creatormem/pkg/storage/inmemory"
)

// ErrMockStorage is returned by MockStorageDriver when a failure is toggled on.
var ErrMockStorage = errors.New("mock storage failure")

// MockStorageDriver wraps the in-memory driver and can be told to fail
// individual operations.
type MockStorageDriver struct {
	*inmemory.Driver

	mu sync.Mutex

	// FailGet causes Get to return ErrMockStorage.
	FailGet bool

	// FailPut causes Put to return ErrMockStorage.
	FailPut bool

	// FailCreate causes CreateIfAbsent to return ErrMockStorage.
	FailCreate bool

	// FailList causes List to return ErrMockStorage.
	FailList bool

	// Puts counts successful Put calls.
	Puts int
}

// NewMockStorageDriver creates a new mock storage driver.
func NewMockStorageDriver() *MockStorageDriver {
	return &MockStorageDriver{Driver: inmemory.NewDriver()}
}

func (m *MockStorageDriver) Get(ctx context.Context, userID string) (*record.UserRecord, error) {
	m.mu.Lock()
	fail := m.FailGet
	m.mu.Unlock()
	if fail {
		return nil, ErrMockStorage
	}
	return m.Driver.Get(ctx, userID)
}

func (m *MockStorageDriver) Put(ctx context.Context, rec *record.UserRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPut {
		return ErrMockStorage
	}
	if err := m.Driver.Put(ctx, rec); err != nil {
		return err
	}
	m.Puts++
	return nil
}

func (m *MockStorageDriver) CreateIfAbsent(ctx context.Context, rec *record.UserRecord) (*record.UserRecord, bool, error) {
	m.mu.Lock()
	fail := m.FailCreate
	m.mu.Unlock()
	if fail {
		return nil, false, ErrMockStorage
	}
	return m.Driver.CreateIfAbsent(ctx, rec)
}

func (m *MockStorageDriver) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	fail := m.FailList
	m.mu.Unlock()
	if fail {
		return nil, ErrMockStorage
	}
	return m.Driver.List(ctx)
}

// PutCount returns the number of successful Put calls.
func (m *MockStorageDriver) PutCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Puts
}
