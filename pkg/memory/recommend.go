package memory

import (
	"context"

	"github.com/papercomputeco/creatormem/pkg/record"
)

const (
	concernExclusivity = "exclusivity"
	concernUsageRights = "usage_rights"
	smallDealSize      = "<$500"
)

// rule emits rec when match holds for a profile.
type rule struct {
	match func(p record.ProfileSummary) bool
	rec   record.Recommendation
}

// rules are evaluated in order and all matching rules fire.
var rules = []rule{
	{
		match: func(p record.ProfileSummary) bool { return p.HasConcern(concernExclusivity) },
		rec: record.Recommendation{
			Type:     "tip",
			Message:  "You've flagged exclusivity as a concern before. Always negotiate time limits and category scope.",
			Priority: "high",
		},
	},
	{
		match: func(p record.ProfileSummary) bool { return p.HasConcern(concernUsageRights) },
		rec: record.Recommendation{
			Type:     "tip",
			Message:  "Usage rights matter to you. Look for clauses about perpetual vs. limited use, and geographic restrictions.",
			Priority: "high",
		},
	},
	{
		match: func(p record.ProfileSummary) bool {
			return p.TypicalDealSize != nil && *p.TypicalDealSize == smallDealSize
		},
		rec: record.Recommendation{
			Type:     "warning",
			Message:  "For smaller deals, watch out for contracts that ask for more rights than the payment justifies.",
			Priority: "medium",
		},
	},
}

// Recommend returns the advisory messages for p in rule order. A profile that
// matches no rule yields an empty, non-nil slice.
func Recommend(p record.ProfileSummary) []record.Recommendation {
	out := []record.Recommendation{}
	for _, r := range rules {
		if r.match(p) {
			out = append(out, r.rec)
		}
	}
	return out
}

// Recommendations returns the recommendations for the current profile of
// userID. The record is created if it does not exist yet.
func (m *Manager) Recommendations(ctx context.Context, userID string) ([]record.Recommendation, error) {
	rec, err := m.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Recommend(rec.Profile), nil
}
