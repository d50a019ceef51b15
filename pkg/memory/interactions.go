package memory

import (
	"context"
	"time"

	"github.com/papercomputeco/creatormem/pkg/eventstream"
	"github.com/papercomputeco/creatormem/pkg/record"
)

// RecordInteraction appends an interaction event to the log of userID.
// Neither eventType nor data is validated; data is stored as given.
func (m *Manager) RecordInteraction(ctx context.Context, userID, eventType string, data any) (*record.UserRecord, error) {
	return m.update(ctx, "recordInteraction", userID, func(rec *record.UserRecord, now time.Time) *eventstream.MemoryChangedEvent {
		interaction := record.InteractionEvent{
			Type:      eventType,
			Data:      data,
			Timestamp: now,
		}
		rec.Interactions = append(rec.Interactions, interaction)
		rec.UpdatedAt = now

		event := eventstream.NewMemoryChangedEvent(eventstream.EventTypeInteractionRecorded, userID, now)
		event.Interaction = &interaction
		return event
	})
}
