package watcher

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}
	opts.setDefaults()

	assert.True(t, opts.IgnoreHidden, "Should ignore hidden files by default")
	assert.Equal(t, 500*time.Millisecond, opts.SettleDelay)
	assert.Contains(t, opts.IgnorePatterns, ".DS_Store")
	assert.Contains(t, opts.IgnorePatterns, "*.part")
}

func TestOptions_CustomValues(t *testing.T) {
	opts := Options{
		IgnoreHidden:   false,
		SettleDelay:    200 * time.Millisecond,
		IgnorePatterns: []string{"*.bak"},
	}
	opts.setDefaults()

	assert.False(t, opts.IgnoreHidden, "Custom ignore hidden should be preserved")
	assert.Equal(t, 200*time.Millisecond, opts.SettleDelay)
	assert.Equal(t, []string{"*.bak"}, opts.IgnorePatterns)
}

func TestOptions_ShouldIgnore(t *testing.T) {
	opts := Options{
		IgnoreHidden:   true,
		IgnorePatterns: []string{"*.tmp", ".DS_Store", "*.part"},
	}
	opts.setDefaults()

	tests := []struct {
		name   string
		path   string
		expect bool
	}{
		{"hidden file", "/music/.hidden.mp3", true},
		{"hidden directory", "/music/.stfolder/track.flac", true},
		{"DS_Store", "/music/.DS_Store", true},
		{"tmp file", "/music/track.tmp", true},
		{"partial download", "/music/track.flac.part", true},
		{"normal file", "/music/Slowdive/Alison.mp3", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, opts.shouldIgnore(tt.path))
		})
	}
}

func TestOptions_ShouldIgnore_NoIgnoreHidden(t *testing.T) {
	opts := Options{IgnorePatterns: []string{}}
	opts.setDefaults()

	assert.False(t, opts.shouldIgnore("/music/.hidden"))
	assert.False(t, opts.shouldIgnore("/music/track.mp3"))
}

func TestOptions_Accepts(t *testing.T) {
	all := Options{}
	assert.True(t, all.accepts("/anything"))

	mp3Only := Options{Include: func(p string) bool { return strings.HasSuffix(p, ".mp3") }}
	assert.True(t, mp3Only.accepts("/music/a.mp3"))
	assert.False(t, mp3Only.accepts("/music/cover.jpg"))
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "added", EventAdded.String())
	assert.Equal(t, "modified", EventModified.String())
	assert.Equal(t, "removed", EventRemoved.String())
	assert.Equal(t, "unknown", EventType(42).String())
}
