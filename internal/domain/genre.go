package domain

import "time"

// Genre is a genre name as stored. Raw tags and canonical genres share
// the table; a raw genre points at its canonical form through a GenreAlias.
type Genre struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	TrackCount int       `json:"track_count"` // Tracks whose effective genre is this one
	CreatedAt  time.Time `json:"created_at"`
}

// GenreGroup is a curated, named collection of canonical genres that is
// filtered on as one unit.
type GenreGroup struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"` // Stable key: "hip-hop-rnb"
	DisplayName string   `json:"display_name"`
	Description string   `json:"description,omitempty"`
	SortOrder   int      `json:"sort_order"`
	MemberCount int      `json:"member_count"`
	Members     []string `json:"members,omitempty"` // Only populated by single-group reads
}

// GroupMemberMiss is a group member with no matching genre.
type GroupMemberMiss struct {
	Group string `json:"group"`
	Genre string `json:"genre"`
}

// GroupSeedReport summarizes a group seeding pass.
type GroupSeedReport struct {
	DryRun         bool              `json:"dry_run"`
	GroupsCreated  int               `json:"groups_created"`
	GroupsUpdated  int               `json:"groups_updated"`
	MembersLinked  int               `json:"members_linked"`
	GenresCreated  int               `json:"genres_created"`
	GenresNotFound []GroupMemberMiss `json:"genres_not_found"`
}
