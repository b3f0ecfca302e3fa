// Package playlist composes track lists from independent filter dimensions.
package playlist

import "slices"

// TrackSet is a set of track IDs.
type TrackSet map[int64]struct{}

// NewTrackSet returns a set holding ids.
func NewTrackSet(ids ...int64) TrackSet {
	s := make(TrackSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id.
func (s TrackSet) Add(id int64) {
	s[id] = struct{}{}
}

// Contains reports whether id is in the set.
func (s TrackSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of IDs.
func (s TrackSet) Len() int {
	return len(s)
}

// Union returns a new set with the IDs of both sets.
func (s TrackSet) Union(other TrackSet) TrackSet {
	out := make(TrackSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Intersect returns a new set with the IDs present in both sets.
func (s TrackSet) Intersect(other TrackSet) TrackSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(TrackSet, len(small))
	for id := range small {
		if _, ok := large[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted returns the IDs in ascending order.
func (s TrackSet) Sorted() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
