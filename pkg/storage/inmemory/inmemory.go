// Package inmemory provides a process-local storage.Driver backed by a map.
// Records live for the lifetime of the process and are lost on restart.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/papercomputeco/creatormem/pkg/record"
	"github.com/papercomputeco/creatormem/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of records
	mu sync.RWMutex

	// records is the in memory map of user records keyed by user ID
	records map[string]*record.UserRecord
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		records: make(map[string]*record.UserRecord),
	}
}

// Get retrieves a copy of the record for userID.
func (d *Driver) Get(_ context.Context, userID string) (*record.UserRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.records[userID]
	if !ok {
		return nil, storage.NotFoundError{UserID: userID}
	}

	return rec.Clone()
}

// Put stores a copy of rec.
func (d *Driver) Put(_ context.Context, rec *record.UserRecord) error {
	if rec == nil {
		return errors.New("cannot store nil record")
	}

	stored, err := rec.Clone()
	if err != nil {
		return fmt.Errorf("copying record: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.records[stored.UserID] = stored
	return nil
}

// CreateIfAbsent stores rec when no record exists for its user ID and
// returns a copy of the stored record.
func (d *Driver) CreateIfAbsent(_ context.Context, rec *record.UserRecord) (*record.UserRecord, bool, error) {
	if rec == nil {
		return nil, false, errors.New("cannot store nil record")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.records[rec.UserID]; ok {
		out, err := existing.Clone()
		return out, false, err
	}

	stored, err := rec.Clone()
	if err != nil {
		return nil, false, fmt.Errorf("copying record: %w", err)
	}
	d.records[stored.UserID] = stored

	out, err := stored.Clone()
	return out, true, err
}

// List returns all stored user IDs.
func (d *Driver) List(_ context.Context) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]string, 0, len(d.records))
	for id := range d.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}
