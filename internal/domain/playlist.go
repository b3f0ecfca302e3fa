package domain

import (
	"time"

	"github.com/listenupapp/crate-server/internal/playlist"
)

// Playlist is a saved, ordered result of composing filters.
// The track order is fixed at save time.
type Playlist struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Filters    playlist.Filters `json:"filters"`
	TrackIDs   []int64          `json:"track_ids,omitempty"`
	TrackCount int              `json:"track_count"`
	CreatedAt  time.Time        `json:"created_at"`
}
