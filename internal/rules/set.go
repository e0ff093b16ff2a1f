package rules

import "sort"

// StringSet is a unique-key, order-irrelevant collection of strings.
// Serialization sorts the keys, so emitted rules are deterministic.
type StringSet map[string]struct{}

// NewStringSet builds a set from the given items.
func NewStringSet(items ...string) StringSet {
	s := make(StringSet, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Add inserts an item.
func (s StringSet) Add(item string) {
	s[item] = struct{}{}
}

// Has reports membership.
func (s StringSet) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Sorted returns the items in lexicographic order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
