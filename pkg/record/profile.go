package record

// Profile field names as they appear on the wire and in history changes.
const (
	FieldIndustry        = "industry"
	FieldContentType     = "contentType"
	FieldFollowerRange   = "followerRange"
	FieldTypicalDealSize = "typicalDealSize"
	FieldTopConcerns     = "topConcerns"
	FieldPreferredTerms  = "preferredTerms"
)

// ProfileFields lists every profile field in declaration order.
var ProfileFields = []string{
	FieldIndustry,
	FieldContentType,
	FieldFollowerRange,
	FieldTypicalDealSize,
	FieldTopConcerns,
	FieldPreferredTerms,
}

// ProfileSummary is the derived, evolvable summary of a user. Scalar fields
// are nil until first set.
type ProfileSummary struct {
	// Industry or niche, e.g. fitness, tech, lifestyle, beauty, gaming.
	Industry *string `json:"industry"`

	// ContentType, e.g. UGC, sponsorships, affiliate, ambassadorships.
	ContentType *string `json:"contentType"`

	// FollowerRange, e.g. micro, mid, macro, mega.
	FollowerRange *string `json:"followerRange"`

	// TypicalDealSize, e.g. <$500, $500-2k, $2k-10k, $10k+.
	TypicalDealSize *string `json:"typicalDealSize"`

	// TopConcerns, e.g. exclusivity, usage_rights, payment_terms, deliverables.
	TopConcerns []string `json:"topConcerns"`

	// PreferredTerms, e.g. {"maxExclusivity": "30 days", "requiresAdvancePayment": true}.
	PreferredTerms map[string]any `json:"preferredTerms"`
}

// NewProfileSummary returns an empty profile.
func NewProfileSummary() ProfileSummary {
	return ProfileSummary{
		TopConcerns:    []string{},
		PreferredTerms: map[string]any{},
	}
}

// HasConcern reports whether concern is one of the profile's top concerns.
func (p ProfileSummary) HasConcern(concern string) bool {
	for _, c := range p.TopConcerns {
		if c == concern {
			return true
		}
	}
	return false
}

// Value returns the current value of the named field as it would appear in a
// history change: nil or string for scalar fields, the collection itself for
// topConcerns and preferredTerms.
func (p ProfileSummary) Value(field string) any {
	switch field {
	case FieldIndustry:
		return deref(p.Industry)
	case FieldContentType:
		return deref(p.ContentType)
	case FieldFollowerRange:
		return deref(p.FollowerRange)
	case FieldTypicalDealSize:
		return deref(p.TypicalDealSize)
	case FieldTopConcerns:
		return p.TopConcerns
	case FieldPreferredTerms:
		return p.PreferredTerms
	}
	return nil
}

func (p *ProfileSummary) normalize() {
	if p.TopConcerns == nil {
		p.TopConcerns = []string{}
	}
	if p.PreferredTerms == nil {
		p.PreferredTerms = map[string]any{}
	}
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
