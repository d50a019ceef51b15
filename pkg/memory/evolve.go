package memory

import (
	"context"
	"time"

	"github.com/papercomputeco/creatormem/pkg/eventstream"
	"github.com/papercomputeco/creatormem/pkg/record"
)

// EvolveProfile merges updates into the profile of userID.
//
// Every named field whose value differs from the current profile (under the
// Manager's diff mode) is recorded in a single profile_evolution history
// entry before the merge. An update that changes nothing writes no history
// and leaves updatedAt untouched.
func (m *Manager) EvolveProfile(ctx context.Context, userID string, updates record.ProfileUpdate) (*record.UserRecord, error) {
	normalized, err := updates.Normalize()
	if err != nil {
		return nil, &InternalError{Op: "evolveProfile", UserID: userID, Err: err}
	}

	return m.update(ctx, "evolveProfile", userID, func(rec *record.UserRecord, now time.Time) *eventstream.MemoryChangedEvent {
		changes := record.Diff(rec.Profile, normalized, m.diffMode)
		if len(changes) == 0 {
			return nil
		}

		rec.History = append(rec.History, record.HistoryEntry{
			Type:      record.HistoryProfileEvolution,
			Changes:   changes,
			Timestamp: now,
		})

		record.Apply(&rec.Profile, normalized)
		rec.UpdatedAt = now

		event := eventstream.NewMemoryChangedEvent(eventstream.EventTypeProfileEvolved, userID, now)
		event.ProfileChanges = changes
		return event
	})
}
