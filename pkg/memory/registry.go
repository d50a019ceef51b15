package memory

import (
	"context"
	"time"

	"github.com/papercomputeco/creatormem/pkg/eventstream"
	"github.com/papercomputeco/creatormem/pkg/record"
)

// DefaultUserID is the key used for callers that do not identify a user.
// It is an ordinary registry key.
const DefaultUserID = "anonymous"

// NormalizeUserID maps an empty user ID to DefaultUserID.
func NormalizeUserID(userID string) string {
	if userID == "" {
		return DefaultUserID
	}
	return userID
}

// Get returns the record for userID, creating and storing a freshly
// initialized one on first reference. Repeated calls observe the same
// logical record.
func (m *Manager) Get(ctx context.Context, userID string) (*record.UserRecord, error) {
	rec, created, err := m.driver.CreateIfAbsent(ctx, record.New(userID, m.now()))
	if err != nil {
		return nil, &InternalError{Op: "get", UserID: userID, Err: err}
	}

	if created {
		m.logger.Debug("created user record", "user_id", userID)
	}

	return rec, nil
}

// Users returns the IDs of every known user.
func (m *Manager) Users(ctx context.Context) ([]string, error) {
	ids, err := m.driver.List(ctx)
	if err != nil {
		return nil, &InternalError{Op: "list", Err: err}
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// mutation applies a change to rec at now. It returns the event describing
// the change, or nil when nothing changed and the record must not be
// written.
type mutation func(rec *record.UserRecord, now time.Time) *eventstream.MemoryChangedEvent

// update runs one read-modify-write cycle for userID under the user's lock.
// The driver hands out a private copy, so when Put fails the stored record is
// left exactly as it was.
func (m *Manager) update(ctx context.Context, op, userID string, apply mutation) (*record.UserRecord, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	rec, err := m.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	event := apply(rec, m.now())
	if event == nil {
		return rec, nil
	}

	if err := m.driver.Put(ctx, rec); err != nil {
		return nil, &InternalError{Op: op, UserID: userID, Err: err}
	}

	m.logger.Debug("user record updated",
		"op", op,
		"user_id", userID,
		"event_type", event.EventType,
	)

	if m.events != nil {
		m.events.Enqueue(event)
	}

	return rec, nil
}
