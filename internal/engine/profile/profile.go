// internal/engine/profile/profile.go
package profile

import (
	"sort"
	"strings"
)

// Kind identifies which entity family a profile was built from.
type Kind string

const (
	KindCity Kind = "city"
	KindJob  Kind = "job"
	KindUser Kind = "user"
)

// Profile is a normalized, typed attribute bag for one entity. Absent
// attributes are simply not present; accessors report that with an ok
// bool instead of returning a zero that could be mistaken for data.
type Profile struct {
	kind Kind
	id   string

	numbers map[string]float64
	bools   map[string]bool
	strs    map[string]string
	lists   map[string][]string
}

func newProfile(kind Kind, id string) *Profile {
	return &Profile{
		kind:    kind,
		id:      id,
		numbers: make(map[string]float64),
		bools:   make(map[string]bool),
		strs:    make(map[string]string),
		lists:   make(map[string][]string),
	}
}

func (p *Profile) Kind() Kind { return p.kind }
func (p *Profile) ID() string { return p.id }

// Number returns a numeric attribute. ok is false when the source
// record never carried the value.
func (p *Profile) Number(name string) (float64, bool) {
	v, ok := p.numbers[name]
	return v, ok
}

// Bool returns a boolean attribute. Absent flags are false.
func (p *Profile) Bool(name string) bool {
	return p.bools[name]
}

// Str returns a string attribute, trimmed and lower-cased.
func (p *Profile) Str(name string) (string, bool) {
	v, ok := p.strs[name]
	return v, ok
}

// List returns a case-folded copy of a list attribute, for matching.
func (p *Profile) List(name string) []string {
	raw := p.lists[name]
	if len(raw) == 0 {
		return nil
	}
	folded := make([]string, len(raw))
	for i, s := range raw {
		folded[i] = strings.ToLower(s)
	}
	return folded
}

// RawList returns a list attribute with the original casing preserved,
// for display-facing output such as tags.
func (p *Profile) RawList(name string) []string {
	raw := p.lists[name]
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, len(raw))
	copy(out, raw)
	return out
}

func (p *Profile) setNumber(name string, v *float64) {
	if v != nil {
		p.numbers[name] = *v
	}
}

func (p *Profile) setBool(name string, v bool) {
	p.bools[name] = v
}

func (p *Profile) setStr(name, v string) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v != "" {
		p.strs[name] = v
	}
}

// setList stores a list deduplicated case-insensitively, keeping the
// first occurrence's casing and order.
func (p *Profile) setList(name string, values []string) {
	if len(values) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	if len(out) > 0 {
		p.lists[name] = out
	}
}

// Snapshot flattens the profile into a plain map suitable for JSON
// persistence. Output is deterministic for identical input.
func (p *Profile) Snapshot() map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range p.numbers {
		out[k] = v
	}
	for k, v := range p.bools {
		out[k] = v
	}
	for k, v := range p.strs {
		out[k] = v
	}
	for k, v := range p.lists {
		cp := make([]string, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// AttributeNames returns the sorted names of all attributes present.
func (p *Profile) AttributeNames() []string {
	names := make([]string, 0, len(p.numbers)+len(p.bools)+len(p.strs)+len(p.lists))
	for k := range p.numbers {
		names = append(names, k)
	}
	for k := range p.bools {
		names = append(names, k)
	}
	for k := range p.strs {
		names = append(names, k)
	}
	for k := range p.lists {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
