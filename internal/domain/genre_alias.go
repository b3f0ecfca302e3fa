package domain

import (
	"time"

	"github.com/listenupapp/crate-server/internal/genre"
)

// GenreAlias maps a raw genre row to its canonical genre row.
// Identity aliases (raw == canonical) are stored too, so every normalized
// genre resolves through the same join.
type GenreAlias struct {
	ID               int64     `json:"id"`
	RawGenreID       int64     `json:"raw_genre_id"`
	CanonicalGenreID int64     `json:"canonical_genre_id"`
	RawName          string    `json:"raw_name"`
	CanonicalName    string    `json:"canonical_name"`
	CreatedAt        time.Time `json:"created_at"`
}

// NormalizationRun records one pass of genre normalization over the library.
type NormalizationRun struct {
	ID               string          `json:"id"`
	DryRun           bool            `json:"dry_run"`
	TotalGenres      int             `json:"total_genres"`
	CanonicalNew     int             `json:"canonical_new"`     // Canonical names with no genre row yet
	AliasMappings    int             `json:"alias_mappings"`    // Raw names that differ from their canonical
	IdentityMappings int             `json:"identity_mappings"` // Raw names already canonical
	AliasesCreated   int             `json:"aliases_created"`   // Alias rows actually inserted
	ClustersFound    int             `json:"clusters_found"`
	Clusters         []genre.Cluster `json:"clusters,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}
