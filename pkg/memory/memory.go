// Package memory implements the layered creatormem user-memory model.
//
// A Manager resolves user IDs to records through a storage.Driver and applies
// the three mutating operations to them:
//
//   - AddFact appends an atomic fact, superseding the active fact of the
//     same category (last write wins) and auditing the conflict.
//   - EvolveProfile merges a partial profile update, auditing every changed
//     field.
//   - RecordInteraction appends a raw interaction event.
//
// Recommendations derives advisory messages from the current profile without
// mutating anything.
//
// Writes to one user are serialized inside the Manager, so the
// single-active-fact-per-category invariant holds under concurrent requests.
// Writes to different users proceed in parallel.
package memory

import (
	"errors"
	"log/slog"
	"time"

	"github.com/papercomputeco/creatormem/pkg/eventstream"
	"github.com/papercomputeco/creatormem/pkg/logger"
	"github.com/papercomputeco/creatormem/pkg/record"
	"github.com/papercomputeco/creatormem/pkg/storage"
)

// EventQueue accepts change events for asynchronous delivery.
// *worker.Pool satisfies it.
type EventQueue interface {
	Enqueue(event *eventstream.MemoryChangedEvent) bool
}

// Config is the configuration for a Manager.
type Config struct {
	// Driver is the storage backend for user records.
	Driver storage.Driver

	// Events optionally receives a change event after every applied
	// mutation.
	Events EventQueue

	// DiffMode selects how profile collections are compared
	// (defaults to record.DiffShallow).
	DiffMode record.DiffMode

	// Logger is the provided slog logger (defaults to a no-op logger).
	Logger *slog.Logger

	// Now returns the current time (defaults to time.Now in UTC).
	Now func() time.Time
}

// Manager is the memory registry and the entry point for every memory
// operation.
type Manager struct {
	driver   storage.Driver
	events   EventQueue
	diffMode record.DiffMode
	logger   *slog.Logger
	now      func() time.Time

	locks *keyedMutex
}

// NewManager creates a Manager from c.
func NewManager(c Config) (*Manager, error) {
	if c.Driver == nil {
		return nil, errors.New("storage driver is required")
	}

	mode, err := record.ParseDiffMode(string(c.DiffMode))
	if err != nil {
		return nil, err
	}

	m := &Manager{
		driver:   c.Driver,
		events:   c.Events,
		diffMode: mode,
		logger:   c.Logger,
		now:      c.Now,
		locks:    newKeyedMutex(),
	}

	if m.logger == nil {
		m.logger = logger.Nop()
	}
	if m.now == nil {
		m.now = func() time.Time { return time.Now().UTC() }
	}

	return m, nil
}

// DiffMode returns the profile diff mode in use.
func (m *Manager) DiffMode() record.DiffMode {
	return m.diffMode
}
