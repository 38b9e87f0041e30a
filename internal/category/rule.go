package category

import (
	"slices"
	"strings"
)

// MatchKind discriminates how a Rule compares a feature's tag value.
type MatchKind string

const (
	MatchWildcard MatchKind = "wildcard" // key present, any value
	MatchFlag     MatchKind = "flag"     // key present and not explicitly negated
	MatchOneOf    MatchKind = "one_of"   // value in Values
	MatchExact    MatchKind = "exact"    // value equals Values[0]
)

// Rule is a single tag predicate. A category matches a feature when any of
// its rules match.
type Rule struct {
	Key    string    `yaml:"key" json:"key"`
	Kind   MatchKind `yaml:"match" json:"match"`
	Values []string  `yaml:"values,omitempty" json:"values,omitempty"`
}

// Wildcard matches any feature carrying key.
func Wildcard(key string) Rule {
	return Rule{Key: key, Kind: MatchWildcard}
}

// Flag matches features where key is set to anything but a negative value.
func Flag(key string) Rule {
	return Rule{Key: key, Kind: MatchFlag}
}

// OneOf matches features whose key has one of values.
func OneOf(key string, values ...string) Rule {
	return Rule{Key: key, Kind: MatchOneOf, Values: values}
}

// Exact matches features whose key equals value.
func Exact(key, value string) Rule {
	return Rule{Key: key, Kind: MatchExact, Values: []string{value}}
}

// Matches reports whether tags satisfy r.
func (r Rule) Matches(tags map[string]string) bool {
	v, ok := tags[r.Key]
	if !ok {
		return false
	}
	switch r.Kind {
	case MatchWildcard:
		return true
	case MatchFlag:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "no", "false", "0":
			return false
		}
		return true
	case MatchOneOf:
		return slices.Contains(r.Values, v)
	case MatchExact:
		return len(r.Values) > 0 && r.Values[0] == v
	default:
		return false
	}
}

// valid reports whether r is well formed.
func (r Rule) valid() bool {
	if r.Key == "" {
		return false
	}
	switch r.Kind {
	case MatchWildcard, MatchFlag:
		return true
	case MatchOneOf:
		return len(r.Values) > 0
	case MatchExact:
		return len(r.Values) == 1
	default:
		return false
	}
}
