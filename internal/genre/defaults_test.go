package genre

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultGroups_MembersAreCanonical(t *testing.T) {
	for _, g := range DefaultGroups {
		for _, member := range g.Genres {
			assert.Equal(t, member, Normalize(member), "group %s member %q", g.Name, member)
		}
	}
}

func TestDefaultGroups_UniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, g := range DefaultGroups {
		assert.False(t, seen[g.Name], "duplicate group %s", g.Name)
		seen[g.Name] = true
		assert.NotEmpty(t, g.DisplayName)
		assert.NotEmpty(t, g.Genres)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Post Rock", "post-rock"},
		{"Rock", "rock"},
		{"Ambient & Experimental", "ambient-and-experimental"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}
