// Package storage defines the persistence boundary for creatormem user
// records. The memory manager only talks to a Driver, so the in-memory map,
// the embedded SQLite store and the networked PostgreSQL store are
// interchangeable.
package storage

import (
	"context"

	"github.com/papercomputeco/creatormem/pkg/record"
)

// Driver persists user records keyed by user ID.
//
// Drivers must hand out records that the caller may mutate freely: a record
// returned by Get or CreateIfAbsent is never the instance the driver holds,
// and Put stores its own copy. This keeps a failed write from leaving a
// half-applied mutation visible to other callers.
type Driver interface {
	// Get retrieves the record for userID. Returns NotFoundError when no
	// record exists.
	Get(ctx context.Context, userID string) (*record.UserRecord, error)

	// Put stores rec, replacing any existing record with the same user ID.
	Put(ctx context.Context, rec *record.UserRecord) error

	// CreateIfAbsent stores rec only when no record exists for its user ID,
	// then returns whichever record is stored. The boolean reports whether
	// rec was newly inserted.
	CreateIfAbsent(ctx context.Context, rec *record.UserRecord) (*record.UserRecord, bool, error)

	// List returns the IDs of every stored user, sorted.
	List(ctx context.Context) ([]string, error)

	// Close closes the store and releases any resources.
	Close() error
}
