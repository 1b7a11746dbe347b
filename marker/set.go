package marker

import (
	"sort"
	"strings"
)

// Set is an immutable collection of markers. The zero Set is empty and usable.
type Set struct {
	members map[Marker]struct{}
}

// NewSet builds a Set from the given markers, dropping duplicates.
func NewSet(markers ...Marker) Set {
	if len(markers) == 0 {
		return Set{}
	}
	members := make(map[Marker]struct{}, len(markers))
	for _, m := range markers {
		members[m] = struct{}{}
	}
	return Set{members: members}
}

// Has reports whether the set contains m.
func (s Set) Has(m Marker) bool {
	_, ok := s.members[m]
	return ok
}

// Len returns the number of markers in the set.
func (s Set) Len() int { return len(s.members) }

// All returns the markers in the set sorted by name.
func (s Set) All() []Marker {
	if len(s.members) == 0 {
		return nil
	}
	all := make([]Marker, 0, len(s.members))
	for m := range s.members {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all
}

// Union returns a new Set containing the markers of both sets.
func (s Set) Union(other Set) Set {
	if other.Len() == 0 {
		return s
	}
	if s.Len() == 0 {
		return other
	}
	members := make(map[Marker]struct{}, len(s.members)+len(other.members))
	for m := range s.members {
		members[m] = struct{}{}
	}
	for m := range other.members {
		members[m] = struct{}{}
	}
	return Set{members: members}
}

// String renders the set as a sorted, space-separated list.
func (s Set) String() string {
	all := s.All()
	names := make([]string, len(all))
	for i, m := range all {
		names[i] = string(m)
	}
	return "[" + strings.Join(names, " ") + "]"
}
