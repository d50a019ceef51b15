// Package record defines the shape of a creatormem user record: the atomic
// facts known about a user, the derived profile summary, the raw interaction
// log and the append-only history of conflicts and profile changes.
//
// The types here carry no storage or transport behavior. pkg/memory applies
// mutations to them and pkg/storage persists them.
package record

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// HistoryFactConflict tags a history entry written when a new fact
	// supersedes the active fact of the same category.
	HistoryFactConflict = "fact_conflict"

	// HistoryProfileEvolution tags a history entry written when one or more
	// profile fields change.
	HistoryProfileEvolution = "profile_evolution"

	// ResolutionSuperseded is the only conflict resolution policy: last write
	// wins per category.
	ResolutionSuperseded = "superseded"
)

// UserRecord is the full memory kept for one user.
type UserRecord struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Facts are kept in arrival order. Facts are never removed, only flagged
	// as superseded.
	Facts []Fact `json:"facts"`

	Profile ProfileSummary `json:"profile"`

	Interactions []InteractionEvent `json:"interactions"`

	History []HistoryEntry `json:"history"`

	// active maps category -> index into Facts of the non-superseded fact.
	active map[string]int
}

// New returns a freshly initialized record for userID.
func New(userID string, now time.Time) *UserRecord {
	return &UserRecord{
		UserID:       userID,
		CreatedAt:    now,
		UpdatedAt:    now,
		Facts:        []Fact{},
		Profile:      NewProfileSummary(),
		Interactions: []InteractionEvent{},
		History:      []HistoryEntry{},
		active:       map[string]int{},
	}
}

// Fact is an atomic, timestamped, optionally sourced claim about a user.
type Fact struct {
	ID           string     `json:"id"`
	Category     string     `json:"category"`
	Value        any        `json:"value"`
	Source       *string    `json:"source"`
	CreatedAt    time.Time  `json:"createdAt"`
	Superseded   bool       `json:"superseded"`
	SupersededAt *time.Time `json:"supersededAt,omitempty"`
}

// NewFactID returns an identifier for a fact in category. The UUIDv7 suffix
// embeds a millisecond timestamp followed by random bits.
func NewFactID(category string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return fmt.Sprintf("%s_%s", category, id.String())
}

// InteractionEvent is a raw logged event. Data is an opaque payload.
type InteractionEvent struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// FieldChange holds the before and after values of one profile field.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// HistoryEntry is an immutable audit record. Type is one of
// HistoryFactConflict or HistoryProfileEvolution and decides which of the
// remaining fields are populated.
type HistoryEntry struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	// fact_conflict
	Category   string `json:"category,omitempty"`
	Old        any    `json:"old,omitempty"`
	New        any    `json:"new,omitempty"`
	Resolution string `json:"resolution,omitempty"`

	// profile_evolution
	Changes map[string]FieldChange `json:"changes,omitempty"`
}

// MarshalJSON encodes only the fields that belong to the entry's variant, so a
// conflict whose old or new value is a zero value still carries both keys.
func (h HistoryEntry) MarshalJSON() ([]byte, error) {
	switch h.Type {
	case HistoryFactConflict:
		return json.Marshal(struct {
			Type       string    `json:"type"`
			Category   string    `json:"category"`
			Old        any       `json:"old"`
			New        any       `json:"new"`
			Timestamp  time.Time `json:"timestamp"`
			Resolution string    `json:"resolution"`
		}{h.Type, h.Category, h.Old, h.New, h.Timestamp, h.Resolution})
	case HistoryProfileEvolution:
		changes := h.Changes
		if changes == nil {
			changes = map[string]FieldChange{}
		}
		return json.Marshal(struct {
			Type      string                 `json:"type"`
			Changes   map[string]FieldChange `json:"changes"`
			Timestamp time.Time              `json:"timestamp"`
		}{h.Type, changes, h.Timestamp})
	default:
		type plain HistoryEntry
		return json.Marshal(plain(h))
	}
}

// Recommendation is an advisory message derived from a profile.
type Recommendation struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// ActiveFact returns the non-superseded fact for category, if one exists.
func (r *UserRecord) ActiveFact(category string) (*Fact, bool) {
	r.ensureIndex()
	idx, ok := r.active[category]
	if !ok {
		return nil, false
	}
	return &r.Facts[idx], true
}

// AppendFact appends f and makes it the active fact of its category. The
// caller is responsible for superseding any previous active fact first.
func (r *UserRecord) AppendFact(f Fact) {
	r.ensureIndex()
	r.Facts = append(r.Facts, f)
	if !f.Superseded {
		r.active[f.Category] = len(r.Facts) - 1
	}
}

// Supersede flags the active fact of category as superseded at ts and
// returns the flagged fact.
func (r *UserRecord) Supersede(category string, ts time.Time) (*Fact, bool) {
	f, ok := r.ActiveFact(category)
	if !ok {
		return nil, false
	}
	f.Superseded = true
	at := ts
	f.SupersededAt = &at
	delete(r.active, category)
	return f, true
}

// FactsIn returns the facts recorded for category in arrival order.
func (r *UserRecord) FactsIn(category string) []Fact {
	var out []Fact
	for _, f := range r.Facts {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

// ensureIndex rebuilds the active-fact index when the record was built
// outside New, e.g. decoded from storage.
func (r *UserRecord) ensureIndex() {
	if r.active != nil {
		return
	}
	r.active = make(map[string]int)
	for i, f := range r.Facts {
		if !f.Superseded {
			r.active[f.Category] = i
		}
	}
}

// UnmarshalJSON decodes a record and rebuilds its active-fact index.
func (r *UserRecord) UnmarshalJSON(data []byte) error {
	type plain UserRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = UserRecord(p)
	r.normalize()
	r.active = nil
	r.ensureIndex()
	return nil
}

// normalize replaces nil collections with empty ones so records always
// encode as the same JSON shape.
func (r *UserRecord) normalize() {
	if r.Facts == nil {
		r.Facts = []Fact{}
	}
	if r.Interactions == nil {
		r.Interactions = []InteractionEvent{}
	}
	if r.History == nil {
		r.History = []HistoryEntry{}
	}
	r.Profile.normalize()
}

// Clone returns a deep copy of r. Opaque payloads (fact values, interaction
// data, history values) are copied by round-tripping through JSON.
func (r *UserRecord) Clone() (*UserRecord, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding record %s: %w", r.UserID, err)
	}
	out := &UserRecord{}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", r.UserID, err)
	}
	return out, nil
}
