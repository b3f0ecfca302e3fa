package cache

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type similar struct {
	Name  string  `json:"name"`
	Match float64 `json:"match"`
}

func newTestCache(t *testing.T, path string) *Cache {
	t.Helper()
	c, err := Open(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_RoundTrip(t *testing.T) {
	c := newTestCache(t, "")

	want := []similar{{Name: "Mogwai", Match: 0.91}, {Name: "Explosions in the Sky", Match: 0.8}}
	require.NoError(t, c.SetJSON(Key("similar", "Godspeed You! Black Emperor"), want, time.Hour))

	var got []similar
	found, err := c.GetJSON(Key("similar", "godspeed you! black emperor "), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestCache_Miss(t *testing.T) {
	c := newTestCache(t, "")

	var got []similar
	found, err := c.GetJSON("similar:nobody", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestCache_Expiry(t *testing.T) {
	c := newTestCache(t, "")

	// Badger TTLs have one-second resolution.
	require.NoError(t, c.SetJSON("tags:low", []string{"slowcore"}, time.Second))
	time.Sleep(2100 * time.Millisecond)

	var got []string
	found, err := c.GetJSON("tags:low", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_DeleteAndPrefix(t *testing.T) {
	c := newTestCache(t, "")

	require.NoError(t, c.SetJSON("tags:a", []string{"x"}, 0))
	require.NoError(t, c.SetJSON("tags:b", []string{"y"}, 0))
	require.NoError(t, c.SetJSON("similar:a", []string{"z"}, 0))

	require.NoError(t, c.Delete("tags:a"))
	require.NoError(t, c.Delete("tags:missing"))

	n, err := c.DeletePrefix("tags:")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var got []string
	found, err := c.GetJSON("similar:a", &got)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCache_Persistent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	c, err := Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, c.SetJSON("k", 42, time.Hour))
	require.NoError(t, c.Ping())
	require.NoError(t, c.Close())
	assert.Error(t, c.Ping())

	c2 := newTestCache(t, dir)
	var v int
	found, err := c2.GetJSON("k", &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 42, v)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "similar:radiohead:50", Key("similar", " Radiohead ", "50"))
}
