package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// ErrInvalidUpdate is wrapped by every error returned while parsing or
// normalizing a ProfileUpdate.
var ErrInvalidUpdate = errors.New("invalid profile update")

// DiffMode selects how collection fields are compared when diffing a profile
// update against the current profile.
type DiffMode string

const (
	// DiffShallow compares scalar fields by value and treats any supplied
	// topConcerns or preferredTerms value as a change, since a freshly
	// supplied collection is never the stored instance.
	DiffShallow DiffMode = "shallow"

	// DiffStructural compares collection fields element by element, so
	// re-sending an equal collection is a no-op.
	DiffStructural DiffMode = "structural"
)

// ParseDiffMode validates s. An empty string selects DiffShallow.
func ParseDiffMode(s string) (DiffMode, error) {
	switch DiffMode(s) {
	case "", DiffShallow:
		return DiffShallow, nil
	case DiffStructural:
		return DiffStructural, nil
	default:
		return "", fmt.Errorf("unknown diff mode %q (expected %q or %q)", s, DiffShallow, DiffStructural)
	}
}

// ProfileUpdate is a partial profile keyed by field name. Only named fields
// are diffed and merged.
//
// Values are nil or string for scalar fields, []string for topConcerns and
// map[string]any for preferredTerms. Normalize accepts the looser shapes a
// JSON decoder produces.
type ProfileUpdate map[string]any

// ParseProfileUpdate decodes a JSON object into a normalized update.
func ParseProfileUpdate(data []byte) (ProfileUpdate, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: updates must be an object", ErrInvalidUpdate)
	}

	u := make(ProfileUpdate, len(raw))
	for field, msg := range raw {
		var v any
		switch field {
		case FieldIndustry, FieldContentType, FieldFollowerRange, FieldTypicalDealSize:
			var s *string
			if err := json.Unmarshal(msg, &s); err != nil {
				return nil, fmt.Errorf("%w: %s must be a string or null", ErrInvalidUpdate, field)
			}
			if s != nil {
				v = *s
			}
		case FieldTopConcerns:
			var list []string
			if err := json.Unmarshal(msg, &list); err != nil {
				return nil, fmt.Errorf("%w: %s must be a list of strings", ErrInvalidUpdate, field)
			}
			v = list
		case FieldPreferredTerms:
			var terms map[string]any
			if err := json.Unmarshal(msg, &terms); err != nil {
				return nil, fmt.Errorf("%w: %s must be an object", ErrInvalidUpdate, field)
			}
			v = terms
		default:
			return nil, fmt.Errorf("%w: unknown profile field %q", ErrInvalidUpdate, field)
		}
		u[field] = v
	}

	return u.Normalize()
}

// Normalize validates field names and coerces values into their canonical
// representation. A null collection becomes an empty one.
func (u ProfileUpdate) Normalize() (ProfileUpdate, error) {
	out := make(ProfileUpdate, len(u))
	for field, v := range u {
		switch field {
		case FieldIndustry, FieldContentType, FieldFollowerRange, FieldTypicalDealSize:
			switch s := v.(type) {
			case nil:
				out[field] = nil
			case string:
				out[field] = s
			case *string:
				out[field] = deref(s)
			default:
				return nil, fmt.Errorf("%w: %s must be a string or null", ErrInvalidUpdate, field)
			}

		case FieldTopConcerns:
			switch list := v.(type) {
			case nil:
				out[field] = []string{}
			case []string:
				out[field] = append([]string{}, list...)
			case []any:
				concerns := make([]string, 0, len(list))
				for _, item := range list {
					s, ok := item.(string)
					if !ok {
						return nil, fmt.Errorf("%w: %s must be a list of strings", ErrInvalidUpdate, field)
					}
					concerns = append(concerns, s)
				}
				out[field] = concerns
			default:
				return nil, fmt.Errorf("%w: %s must be a list of strings", ErrInvalidUpdate, field)
			}

		case FieldPreferredTerms:
			switch terms := v.(type) {
			case nil:
				out[field] = map[string]any{}
			case map[string]any:
				out[field] = terms
			default:
				return nil, fmt.Errorf("%w: %s must be an object", ErrInvalidUpdate, field)
			}

		default:
			return nil, fmt.Errorf("%w: unknown profile field %q", ErrInvalidUpdate, field)
		}
	}
	return out, nil
}

// Diff returns the fields of u whose value differs from p under mode. u must
// be normalized.
func Diff(p ProfileSummary, u ProfileUpdate, mode DiffMode) map[string]FieldChange {
	changes := make(map[string]FieldChange)
	for _, field := range ProfileFields {
		next, ok := u[field]
		if !ok {
			continue
		}
		prev := p.Value(field)
		if !fieldChanged(field, prev, next, mode) {
			continue
		}
		changes[field] = FieldChange{Old: prev, New: next}
	}
	return changes
}

func fieldChanged(field string, prev, next any, mode DiffMode) bool {
	switch field {
	case FieldTopConcerns, FieldPreferredTerms:
		if mode == DiffStructural {
			return !reflect.DeepEqual(prev, next)
		}
		return true
	default:
		return prev != next
	}
}

// Apply merges u into p. Fields not named in u are left untouched. u must be
// normalized.
func Apply(p *ProfileSummary, u ProfileUpdate) {
	for field, v := range u {
		switch field {
		case FieldIndustry:
			p.Industry = strPtr(v)
		case FieldContentType:
			p.ContentType = strPtr(v)
		case FieldFollowerRange:
			p.FollowerRange = strPtr(v)
		case FieldTypicalDealSize:
			p.TypicalDealSize = strPtr(v)
		case FieldTopConcerns:
			list, _ := v.([]string)
			p.TopConcerns = append([]string{}, list...)
		case FieldPreferredTerms:
			terms, _ := v.(map[string]any)
			if terms == nil {
				terms = map[string]any{}
			}
			p.PreferredTerms = terms
		}
	}
}

func strPtr(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}
