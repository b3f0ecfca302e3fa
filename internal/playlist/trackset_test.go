package playlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackSet_Union(t *testing.T) {
	a := NewTrackSet(1, 2, 3)
	b := NewTrackSet(3, 4)

	assert.Equal(t, []int64{1, 2, 3, 4}, a.Union(b).Sorted())
	assert.Equal(t, 3, a.Len(), "operands are not modified")
	assert.Equal(t, []int64{1, 2, 3}, a.Union(nil).Sorted())
}

func TestTrackSet_Intersect(t *testing.T) {
	tests := []struct {
		name string
		a, b TrackSet
		want []int64
	}{
		{"overlap", NewTrackSet(1, 2, 3), NewTrackSet(2, 3, 4), []int64{2, 3}},
		{"disjoint", NewTrackSet(1), NewTrackSet(2), []int64{}},
		{"empty operand", NewTrackSet(1, 2), TrackSet{}, []int64{}},
		{"larger left", NewTrackSet(1, 2, 3, 4, 5), NewTrackSet(5), []int64{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Intersect(tt.b).Sorted())
		})
	}
}

func TestTrackSet_AddContains(t *testing.T) {
	s := NewTrackSet()
	s.Add(7)
	s.Add(7)

	assert.True(t, s.Contains(7))
	assert.False(t, s.Contains(8))
	assert.Equal(t, 1, s.Len())
}
