// Package id generates prefixed NanoIDs for normalization runs and saved playlists.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ID prefixes.
const (
	PrefixRun      = "run"
	PrefixPlaylist = "pl"
)

// Generate returns prefix-nanoid, e.g. "pl-V1StGXR8_Z5jdHi6B-myT".
// It fails only when the system entropy source does.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics on failure.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewRunID returns an ID for a normalization run.
func NewRunID() (string, error) { return Generate(PrefixRun) }

// NewPlaylistID returns an ID for a saved playlist.
func NewPlaylistID() (string, error) { return Generate(PrefixPlaylist) }
