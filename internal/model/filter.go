package model

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Match is a regular-expression predicate on a single field.
type Match struct {
	Pattern         string
	CaseInsensitive bool
}

// Filter maps a field name to the predicate its value must satisfy.
// The zero value matches everything.
type Filter map[string]Match

// NameContains returns a filter matching items whose name contains search,
// ignoring case. An empty (or blank) search yields the match-all filter.
func NameContains(search string) Filter {
	search = strings.TrimSpace(search)
	if search == "" {
		return Filter{}
	}
	return Filter{"name": {Pattern: regexp.QuoteMeta(search), CaseInsensitive: true}}
}

// IsEmpty reports whether the filter matches everything.
func (f Filter) IsEmpty() bool { return len(f) == 0 }

// Compile turns the predicate into a Go regular expression.
func (m Match) Compile() (*regexp.Regexp, error) {
	if m.CaseInsensitive {
		return regexp.Compile("(?i)" + m.Pattern)
	}
	return regexp.Compile(m.Pattern)
}

// Matches evaluates the filter against a set of field values.
// Fields missing from values never match.
func (f Filter) Matches(values map[string]string) (bool, error) {
	for field, m := range f {
		v, ok := values[field]
		if !ok {
			return false, nil
		}
		re, err := m.Compile()
		if err != nil {
			return false, err
		}
		if !re.MatchString(v) {
			return false, nil
		}
	}
	return true, nil
}

type wireMatch struct {
	Regex   string `json:"$regex"`
	Options string `json:"$options,omitempty"`
}

// MarshalJSON renders the filter as a Mongo-style query document.
func (f Filter) MarshalJSON() ([]byte, error) {
	doc := make(map[string]wireMatch, len(f))
	for field, m := range f {
		wm := wireMatch{Regex: m.Pattern}
		if m.CaseInsensitive {
			wm.Options = "i"
		}
		doc[field] = wm
	}
	return json.Marshal(doc)
}

// UnmarshalJSON accepts the Mongo-style query document produced by MarshalJSON.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var doc map[string]wireMatch
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	out := make(Filter, len(doc))
	for field, wm := range doc {
		out[field] = Match{Pattern: wm.Regex, CaseInsensitive: strings.Contains(wm.Options, "i")}
	}
	*f = out
	return nil
}
