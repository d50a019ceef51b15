package memory

import (
	"context"
	"time"

	"github.com/papercomputeco/creatormem/pkg/eventstream"
	"github.com/papercomputeco/creatormem/pkg/record"
)

// AddFact records value as the newest fact in category for userID.
//
// When the category already has an active fact, that fact is flagged as
// superseded and a fact_conflict history entry records the old and new
// values. The new fact is appended either way. No fact is ever removed.
// source is optional provenance and may be nil.
func (m *Manager) AddFact(ctx context.Context, userID, category string, value any, source *string) (*record.UserRecord, error) {
	return m.update(ctx, "addFact", userID, func(rec *record.UserRecord, now time.Time) *eventstream.MemoryChangedEvent {
		event := eventstream.NewMemoryChangedEvent(eventstream.EventTypeFactAdded, userID, now)

		if old, ok := rec.Supersede(category, now); ok {
			rec.History = append(rec.History, record.HistoryEntry{
				Type:       record.HistoryFactConflict,
				Category:   category,
				Old:        old.Value,
				New:        value,
				Timestamp:  now,
				Resolution: record.ResolutionSuperseded,
			})

			superseded := *old
			event.Superseded = &superseded
		}

		fact := record.Fact{
			ID:         record.NewFactID(category),
			Category:   category,
			Value:      value,
			Source:     source,
			CreatedAt:  now,
			Superseded: false,
		}
		rec.AppendFact(fact)
		rec.UpdatedAt = now

		event.Fact = &fact
		return event
	})
}
