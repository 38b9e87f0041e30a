// Package category holds the obstacle category table: buffer distances and
// the tag rules used to assign raw features to categories.
package category

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/safezones/internal/resilience"
)

// DefaultBufferM is the buffer distance used for categories absent from an
// override mapping.
const DefaultBufferM = 30.0

// Category describes one obstacle category.
type Category struct {
	Name        string  `yaml:"name" json:"name"`
	BufferM     float64 `yaml:"buffer_m" json:"buffer_m"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Standard    string  `yaml:"standard,omitempty" json:"standard,omitempty"`
	Confidence  string  `yaml:"confidence,omitempty" json:"confidence,omitempty"`
	Rules       []Rule  `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// Table is an immutable, ordered set of categories. Build it once and pass
// it down the call chain.
type Table struct {
	categories    []Category
	byName        map[string]int
	defaultBuffer float64
}

// NewTable validates cats and builds a Table. A non-positive defaultBufferM
// selects DefaultBufferM.
func NewTable(cats []Category, defaultBufferM float64) (*Table, error) {
	if defaultBufferM <= 0 {
		defaultBufferM = DefaultBufferM
	}
	t := &Table{
		categories:    make([]Category, 0, len(cats)),
		byName:        make(map[string]int, len(cats)),
		defaultBuffer: defaultBufferM,
	}
	for _, c := range cats {
		if c.Name == "" {
			return nil, resilience.ConfigErrorf("categories", "category name is empty")
		}
		if _, dup := t.byName[c.Name]; dup {
			return nil, resilience.ConfigErrorf("categories", "duplicate category %q", c.Name)
		}
		if c.BufferM <= 0 {
			return nil, resilience.ConfigErrorf("categories."+c.Name+".buffer_m",
				"buffer distance must be positive, got %v", c.BufferM)
		}
		for _, r := range c.Rules {
			if !r.valid() {
				return nil, resilience.ConfigErrorf("categories."+c.Name+".rules",
					"invalid rule %+v", r)
			}
		}
		c.Rules = append([]Rule(nil), c.Rules...)
		t.byName[c.Name] = len(t.categories)
		t.categories = append(t.categories, c)
	}
	return t, nil
}

// MustDefault returns the built-in table. It panics only if the built-in
// definitions are malformed.
func MustDefault() *Table {
	t, err := NewTable(Defaults(), DefaultBufferM)
	if err != nil {
		panic(eris.Wrap(err, "category: built-in table"))
	}
	return t
}

// Len returns the number of categories.
func (t *Table) Len() int { return len(t.categories) }

// DefaultBuffer returns the fallback buffer distance.
func (t *Table) DefaultBuffer() float64 { return t.defaultBuffer }

// Categories returns a copy of the categories in table order.
func (t *Table) Categories() []Category {
	out := make([]Category, len(t.categories))
	copy(out, t.categories)
	return out
}

// Names returns category names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.categories))
	for i, c := range t.categories {
		out[i] = c.Name
	}
	return out
}

// Get returns the named category.
func (t *Table) Get(name string) (Category, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Category{}, false
	}
	return t.categories[i], true
}

// BufferFor returns the buffer distance for name, falling back to the
// table's default for unknown categories.
func (t *Table) BufferFor(name string) float64 {
	if i, ok := t.byName[name]; ok {
		return t.categories[i].BufferM
	}
	return t.defaultBuffer
}

// WithOverrides returns a new table whose buffer distances come from
// buffers. Categories missing from buffers fall back to the default
// distance, not their previous value. Names in buffers that the table does
// not know are appended as rule-less categories so explicitly labelled
// features can still use them. An empty mapping returns t unchanged.
func (t *Table) WithOverrides(buffers map[string]float64) (*Table, error) {
	if len(buffers) == 0 {
		return t, nil
	}
	cats := t.Categories()
	for i := range cats {
		if d, ok := buffers[cats[i].Name]; ok {
			cats[i].BufferM = d
		} else {
			cats[i].BufferM = t.defaultBuffer
		}
	}

	extra := make([]string, 0)
	for name := range buffers {
		if _, ok := t.byName[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		cats = append(cats, Category{Name: name, BufferM: buffers[name]})
	}

	out, err := NewTable(cats, t.defaultBuffer)
	if err != nil {
		return nil, eris.Wrap(err, "category: apply overrides")
	}
	return out, nil
}

// Match returns the names of every category whose rules match tags, in
// table order. A feature may belong to several categories.
func (t *Table) Match(tags map[string]string) []string {
	var out []string
	for _, c := range t.categories {
		for _, r := range c.Rules {
			if r.Matches(tags) {
				out = append(out, c.Name)
				break
			}
		}
	}
	return out
}

// QueryTags merges every rule into a single key → values query. A nil
// value slice means any value of that key is wanted.
func (t *Table) QueryTags() map[string][]string {
	anyValue := make(map[string]bool)
	values := make(map[string]map[string]struct{})
	for _, c := range t.categories {
		for _, r := range c.Rules {
			switch r.Kind {
			case MatchWildcard, MatchFlag:
				anyValue[r.Key] = true
			default:
				set, ok := values[r.Key]
				if !ok {
					set = make(map[string]struct{})
					values[r.Key] = set
				}
				for _, v := range r.Values {
					set[v] = struct{}{}
				}
			}
		}
	}

	out := make(map[string][]string, len(anyValue)+len(values))
	for k := range anyValue {
		out[k] = nil
	}
	for k, set := range values {
		if anyValue[k] {
			continue
		}
		vs := make([]string, 0, len(set))
		for v := range set {
			vs = append(vs, v)
		}
		sort.Strings(vs)
		out[k] = vs
	}
	return out
}
