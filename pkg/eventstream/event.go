// Package eventstream defines the transport-neutral events emitted after a
// user record changes, and the Publisher interface that delivers them.
package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/creatormem/pkg/record"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeFactAdded is emitted after a fact is appended to a record.
	EventTypeFactAdded = "creatormem.fact.added"

	// EventTypeProfileEvolved is emitted after a profile update changed at
	// least one field.
	EventTypeProfileEvolved = "creatormem.profile.evolved"

	// EventTypeInteractionRecorded is emitted after an interaction is logged.
	EventTypeInteractionRecorded = "creatormem.interaction.recorded"
)

// MemoryChangedEvent describes one applied mutation of a user record. Exactly
// one of Fact, ProfileChanges or Interaction is set, matching EventType.
type MemoryChangedEvent struct {
	SchemaVersion   int       `json:"schema_version"`
	EventType       string    `json:"event_type"`
	EventID         string    `json:"event_id"`
	EmittedAt       time.Time `json:"emitted_at"`
	UserID          string    `json:"user_id"`
	RecordUpdatedAt time.Time `json:"record_updated_at"`

	Fact *record.Fact `json:"fact,omitempty"`

	// Superseded is the fact the new Fact replaced, if any.
	Superseded *record.Fact `json:"superseded,omitempty"`

	ProfileChanges map[string]record.FieldChange `json:"profile_changes,omitempty"`

	Interaction *record.InteractionEvent `json:"interaction,omitempty"`
}

// NewMemoryChangedEvent returns an event of eventType for userID with a fresh
// event ID. The event is emitted at the mutation time at, which is also the
// record's new updatedAt.
func NewMemoryChangedEvent(eventType, userID string, at time.Time) *MemoryChangedEvent {
	return &MemoryChangedEvent{
		SchemaVersion:   SchemaVersionV1,
		EventType:       eventType,
		EventID:         "evt_" + uuid.NewString(),
		EmittedAt:       at.UTC(),
		UserID:          userID,
		RecordUpdatedAt: at,
	}
}
